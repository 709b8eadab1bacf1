package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aelexs/dictsmoke/internal/smoke"
)

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *struct{}     `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// WriteJUnit writes res as JUnit XML. Each suite becomes a <testsuite>
// whose classname is "dictsmoke.<suite>".
func WriteJUnit(w io.Writer, res smoke.RunResult) error {
	passed, failed, skipped := res.Counts()
	doc := junitTestSuites{
		Name:     "dictsmoke",
		Tests:    passed + failed + skipped,
		Failures: failed,
		Skipped:  skipped,
		Time:     seconds(res.Duration),
	}

	for _, s := range res.Suites {
		p, f, sk := s.Counts()
		js := junitTestSuite{
			Name:     s.Name,
			Tests:    p + f + sk,
			Failures: f,
			Skipped:  sk,
			Time:     seconds(s.Duration),
		}
		if !res.Started.IsZero() {
			js.Timestamp = res.Started.UTC().Format(time.RFC3339)
		}
		for _, c := range s.Cases {
			jc := junitTestCase{
				Name:      c.Name,
				ClassName: "dictsmoke." + s.Name,
				Time:      seconds(c.Duration),
			}
			switch {
			case c.Skipped:
				jc.Skipped = &struct{}{}
			case c.Err != nil:
				jc.Failure = &junitFailure{Message: c.Err.Error(), Text: c.Err.Error()}
			}
			js.Cases = append(js.Cases, jc)
		}
		doc.Suites = append(doc.Suites, js)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write junit header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteJUnitFile writes res to dir/TEST-dictsmoke-<run>.xml, creating dir,
// and returns the file path.
func WriteJUnitFile(dir string, res smoke.RunResult) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path = filepath.Join(dir, fmt.Sprintf("TEST-dictsmoke-%s.xml", res.RunID.Short()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create junit report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close junit report: %w", cerr)
		}
	}()

	if err := WriteJUnit(f, res); err != nil {
		return "", err
	}
	return path, nil
}

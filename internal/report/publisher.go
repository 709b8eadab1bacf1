package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/aelexs/dictsmoke/internal/smoke"
)

// snsAPI is the subset of the SNS client used for run summaries. The real
// *sns.Client satisfies it.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var (
	_ Publisher = (*SNSPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)

// SNSPublisher posts run summaries to an SNS topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

func NewSNSPublisher(client snsAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// Publish sends Summary(res) with a PASS/FAIL subject and a "result"
// message attribute subscribers can filter on.
func (p *SNSPublisher) Publish(ctx context.Context, res smoke.RunResult) error {
	result := "PASS"
	if !res.OK() {
		result = "FAIL"
	}

	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("dictsmoke " + result),
		Message:  aws.String(Summary(res)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"result": {DataType: aws.String("String"), StringValue: aws.String(result)},
			"run_id": {DataType: aws.String("String"), StringValue: aws.String(res.RunID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("sns: publish run %s summary: %w", res.RunID.Short(), err)
	}
	return nil
}

// LogPublisher writes run summaries to the structured log. It is used when
// no SNS topic is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, res smoke.RunResult) error {
	level := slog.LevelInfo
	if !res.OK() {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "smoke run summary (log-only)",
		slog.String("run_id", res.RunID.String()),
		slog.String("summary", Summary(res)),
	)
	return nil
}

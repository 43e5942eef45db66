package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// SNSClient wraps AWS SNS client for notification operations
type SNSClient struct {
	svc      *sns.Client
	topicArn string
}

func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}, nil
}

// SendAlert publishes a message to the configured topic.
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Info().Str("message_id", aws.ToString(result.MessageId)).Msg("alert sent")
	return nil
}

// SendFaultAlert notifies about an injected or detected appliance fault.
func (c *SNSClient) SendFaultAlert(ctx context.Context, r domain.Reading) error {
	subject, message := faultAlert(r)
	return c.SendAlert(ctx, subject, message)
}

func faultAlert(r domain.Reading) (string, string) {
	subject := fmt.Sprintf("Virtual Home Alert: Fault at %s", r.HomeID)
	message := fmt.Sprintf(
		"Fault Detected\n\n"+
			"Home: %s\n"+
			"Reading: %s\n"+
			"Total Load: %.2f kW\n"+
			"Price: %.2f\n"+
			"Time: %s\n\n"+
			"Please inspect the appliances.",
		r.HomeID,
		r.ID,
		r.TotalLoad,
		r.Price,
		r.GeneratedAt.Format("2006-01-02 15:04:05"),
	)
	return subject, message
}

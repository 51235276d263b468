package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// emailSender is the slice of the SES API the channel uses; narrowed for
// test doubles.
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailChannel sends plain-text notification email through SES.
type EmailChannel struct {
	sender emailSender
	from   string
}

// NewEmailChannel builds an SES-backed email channel.
func NewEmailChannel(ctx context.Context, region, from string) (*EmailChannel, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &EmailChannel{sender: sesv2.NewFromConfig(cfg), from: from}, nil
}

// NewEmailChannelWithSender injects a sender, used by tests.
func NewEmailChannelWithSender(sender emailSender, from string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from}
}

// Send delivers one message. to may be empty when the recipient has no
// address on file; that is reported as an error so the caller can record a
// failed delivery.
func (e *EmailChannel) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	_, err := e.sender.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

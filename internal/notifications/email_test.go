package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestEmailChannelSend(t *testing.T) {
	sender := &fakeSender{}
	channel := NewEmailChannelWithSender(sender, "portal@ledgerline.co.uk")

	err := channel.Send(context.Background(), "priya@example.com", "Deadline approaching", "VAT return due in 7 days")

	assert.NoError(t, err)
	assert.Len(t, sender.inputs, 1)
	in := sender.inputs[0]
	assert.Equal(t, "portal@ledgerline.co.uk", *in.FromEmailAddress)
	assert.Equal(t, []string{"priya@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Deadline approaching", *in.Content.Simple.Subject.Data)
}

func TestEmailChannelSend_NoRecipient(t *testing.T) {
	sender := &fakeSender{}
	channel := NewEmailChannelWithSender(sender, "portal@ledgerline.co.uk")

	err := channel.Send(context.Background(), "", "subject", "body")

	assert.Error(t, err)
	assert.Empty(t, sender.inputs)
}

func TestEmailChannelSend_ProviderFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("throttled")}
	channel := NewEmailChannelWithSender(sender, "portal@ledgerline.co.uk")

	err := channel.Send(context.Background(), "priya@example.com", "subject", "body")

	assert.ErrorContains(t, err, "throttled")
}

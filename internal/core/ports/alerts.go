package ports

import "context"

const (
	ChallengeOpened Topic = "Challenge Opened"
	FraudProven     Topic = "Fraud Proven"
	SpokeRestored   Topic = "Spoke Restored"
)

type Topic string

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}

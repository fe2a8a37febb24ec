package workflow

import "fmt"

// Topic is a notification event with a fixed subject and mail template.
type Topic int

const (
	TopicAdvertiserApproved Topic = iota
	TopicAdvertiserCreated
	TopicAdPaidCreated
	TopicAdPaidUpdated

	topicCount
)

type topicInfo struct {
	name    string
	subject string
}

// Indexed by Topic.
var topics = [...]topicInfo{
	TopicAdvertiserApproved: {"advertiser_approved", "Your account has been approved"},
	TopicAdvertiserCreated:  {"advertiser_created", "The organization welcomes you!"},
	TopicAdPaidCreated:      {"ad_paid_created", "Your advertising contract needs your attention"},
	TopicAdPaidUpdated:      {"ad_paid_updated", "Your advertising contract has been updated"},
}

// The table and the topic list must have the same length, or one of these
// array sizes goes negative.
var (
	_ [len(topics) - int(topicCount)]struct{}
	_ [int(topicCount) - len(topics)]struct{}
)

// AllTopics returns every topic in declaration order.
func AllTopics() []Topic {
	out := make([]Topic, 0, topicCount)
	for t := Topic(0); t < topicCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Topic) Valid() bool {
	return t >= 0 && t < topicCount
}

// String returns the topic name; it doubles as the template key.
func (t Topic) String() string {
	if !t.Valid() {
		return fmt.Sprintf("topic(%d)", int(t))
	}
	return topics[t].name
}

func (t Topic) Subject() string {
	if !t.Valid() {
		return ""
	}
	return topics[t].subject
}

// ParseTopic maps a topic name back to its Topic.
func ParseTopic(name string) (Topic, error) {
	for t := Topic(0); t < topicCount; t++ {
		if topics[t].name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown topic %q", name)
}

func (t Topic) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid topic %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Topic) UnmarshalText(b []byte) error {
	v, err := ParseTopic(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

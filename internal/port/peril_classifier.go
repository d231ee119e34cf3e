package port

import "context"

// PerilInput is the cause-of-loss text taken from an FNOL.
type PerilInput struct {
	Cause       string
	Description string
}

// PerilClassification is the classifier's verdict on a loss.
type PerilClassification struct {
	PrimaryPeril    string
	SecondaryPerils []string
	Confidence      float64
	Reasoning       string
}

// PerilClassifier maps free-text loss descriptions onto peril codes.
type PerilClassifier interface {
	Classify(ctx context.Context, input PerilInput) (*PerilClassification, error)
}

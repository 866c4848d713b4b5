package integration

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
	"gopkg.in/yaml.v3"
)

// DryRunClient stands in for the Discord client when no connection is made.
// It logs what would have been sent.
type DryRunClient struct {
	log logrus.FieldLogger
}

// NewDryRunClient creates a DryRunClient logging to log.
func NewDryRunClient(log logrus.FieldLogger) *DryRunClient {
	return &DryRunClient{log: log}
}

// SetActivity logs activity as YAML.
func (c *DryRunClient) SetActivity(activity models.Activity) error {
	out, err := yaml.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encoding activity: %w", err)
	}
	c.log.Infof("dry run, would publish:\n%s", out)
	return nil
}

// ClearActivity logs the clear request.
func (c *DryRunClient) ClearActivity() error {
	c.log.Info("dry run, would clear presence")
	return nil
}

// Close is a no-op.
func (c *DryRunClient) Close() error { return nil }

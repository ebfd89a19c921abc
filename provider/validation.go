package provider

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"intake/model"
)

// Ping checks that the endpoint is reachable and accepts the API key by
// listing models. It returns the number of models the endpoint reports and
// whether the configured model is among them.
func (c *ResponsesClient) Ping(ctx context.Context) (int, bool, error) {
	policy := c.settings.policyFor(model.LevelLow)
	ctx, cancel := context.WithTimeout(ctx, policy.timeout)
	defer cancel()

	body, err := c.transport.get(ctx, "models")
	if err != nil {
		return 0, false, fmt.Errorf("failed to reach %s: %w", c.settings.baseURL(), err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return 0, false, fmt.Errorf("unexpected models response from %s", c.settings.baseURL())
	}

	found := false
	data.ForEach(func(_, m gjson.Result) bool {
		if m.Get("id").String() == c.settings.model() {
			found = true
			return false
		}
		return true
	})
	return len(data.Array()), found, nil
}

package conformance

import (
	"context"
)

// EndpointsSuite covers the auxiliary endpoints around chat completions.
func EndpointsSuite() Suite {
	return Suite{
		Name: "endpoints",
		Scenarios: []Scenario{
			{Name: "health check", Run: scenarioHealth},
			{Name: "models listing", Run: scenarioModels},
		},
	}
}

func scenarioHealth(ctx context.Context, target Target) error {
	status, err := target.Client().Health(ctx)
	if err != nil {
		return callFailed(err, "health check")
	}
	if status.Status != "ok" {
		return assertionErrf("health status = %q, want %q", status.Status, "ok")
	}
	return nil
}

func scenarioModels(ctx context.Context, target Target) error {
	list, err := target.Client().ListModels(ctx)
	if err != nil {
		return callFailed(err, "models listing")
	}
	if list.Object != "list" {
		return protocolErrf("models object = %q, want %q", list.Object, "list")
	}
	if len(list.Data) == 0 {
		return protocolErrf("models listing is empty")
	}
	for _, model := range list.Data {
		if model.Id != echoModel {
			continue
		}
		if model.Object != "model" {
			return protocolErrf("echo model object = %q, want %q", model.Object, "model")
		}
		return nil
	}
	return assertionErrf("models listing does not contain %q", echoModel)
}

package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted browsing session.
type Scenario struct {
	// Name identifies the scenario in logs.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Page is the absolute URL the session starts on.
	Page string `yaml:"page"`

	Referrer string `yaml:"referrer,omitempty"`

	// Provider scripts the injected wallet. Nil means no wallet.
	Provider *ProviderScript `yaml:"provider,omitempty"`

	Steps []Step `yaml:"steps"`
}

// ProviderScript maps provider methods to canned outcomes.
type ProviderScript struct {
	// ReadOnly makes request dispatch non-replaceable.
	ReadOnly bool `yaml:"read_only,omitempty"`

	Responses map[string]any      `yaml:"responses,omitempty"`
	Errors    map[string]RPCError `yaml:"errors,omitempty"`
}

// RPCError is a scripted provider failure.
type RPCError struct {
	Code    int    `yaml:"code"`
	Message string `yaml:"message"`
}

// Step is one action of the session.
type Step struct {
	Action string `yaml:"action"`

	// URL is the target of navigate and replace.
	URL string `yaml:"url,omitempty"`

	// Element is the target of click. Nil clicks a non-element.
	Element *Element `yaml:"element,omitempty"`

	// Event is the provider notification of provider_event, or the
	// custom event name of event.
	Event string `yaml:"event,omitempty"`

	Payload any `yaml:"payload,omitempty"`

	// Method and Params describe a request made through the provider.
	Method string `yaml:"method,omitempty"`
	Params []any  `yaml:"params,omitempty"`

	// Args are the inputs of client calls.
	Args map[string]any `yaml:"args,omitempty"`

	// ExpectError marks a step that must fail.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Element is a click target.
type Element struct {
	Path string `yaml:"path"`
	Text string `yaml:"text,omitempty"`
}

// Step actions.
const (
	ActionNavigate      = "navigate"
	ActionReplace       = "replace"
	ActionBack          = "back"
	ActionForward       = "forward"
	ActionClick         = "click"
	ActionProviderEvent = "provider_event"
	ActionRequest       = "request"
	ActionEvent         = "event"
	ActionPage          = "page"
	ActionWallet        = "wallet"
	ActionDisconnection = "disconnection"
	ActionChain         = "chain"
	ActionTransaction   = "transaction"
	ActionSignature     = "signature"
	ActionWait          = "wait"
)

// Load reads and parses a scenario YAML file.
// Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Page == "" {
		return fmt.Errorf("page is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionNavigate, ActionReplace:
			if step.URL == "" {
				return fmt.Errorf("steps[%d]: url is required for %s", i, step.Action)
			}
		case ActionProviderEvent:
			if step.Event == "" {
				return fmt.Errorf("steps[%d]: event is required for provider_event", i)
			}
			if s.Provider == nil {
				return fmt.Errorf("steps[%d]: provider_event needs a provider", i)
			}
		case ActionRequest:
			if step.Method == "" {
				return fmt.Errorf("steps[%d]: method is required for request", i)
			}
			if s.Provider == nil {
				return fmt.Errorf("steps[%d]: request needs a provider", i)
			}
		case ActionBack, ActionForward, ActionClick, ActionEvent, ActionPage,
			ActionWallet, ActionDisconnection, ActionChain, ActionTransaction,
			ActionSignature, ActionWait:
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}
	return nil
}

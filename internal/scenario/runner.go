package scenario

import (
	"context"
	"fmt"

	"github.com/bft-labs/walletscope/internal/adapters/host"
	"github.com/bft-labs/walletscope/internal/ports"
	"github.com/bft-labs/walletscope/pkg/walletscope"
)

// Client is the part of *walletscope.Client a scenario drives.
type Client interface {
	Event(name string, attrs walletscope.Attributes) error
	Page() error
	Wallet(in walletscope.WalletInput) error
	Disconnection(in walletscope.DisconnectionInput) error
	Chain(in walletscope.ChainInput) error
	Transaction(in walletscope.TransactionInput) error
	Signature(in walletscope.SignatureInput) error
	Wait()
}

// Host is the in-memory page and wallet a scenario runs against.
type Host struct {
	Window   *host.Window
	Provider *host.Provider
}

// NewHost builds the page and scripted provider described by s.
func NewHost(s *Scenario) Host {
	var opts []host.WindowOption
	if s.Referrer != "" {
		opts = append(opts, host.WithReferrer(s.Referrer))
	}
	h := Host{Window: host.NewWindow(s.Page, opts...)}

	if s.Provider != nil {
		var popts []host.ProviderOption
		if s.Provider.ReadOnly {
			popts = append(popts, host.WithReadOnlyRequest())
		}
		p := host.NewProvider(popts...)
		for method, result := range s.Provider.Responses {
			p.HandleResult(method, result)
		}
		for method, e := range s.Provider.Errors {
			p.HandleError(method, &ports.RPCError{Code: e.Code, Message: e.Message})
		}
		h.Provider = p
	}
	return h
}

// ProviderOrNil returns the provider as a walletscope.Provider, or a nil
// interface when the scenario has no wallet.
func (h Host) ProviderOrNil() walletscope.Provider {
	if h.Provider == nil {
		return nil
	}
	return h.Provider
}

// Result summarizes a run.
type Result struct {
	Steps  int
	Errors []error
}

// Runner executes scenario steps.
type Runner struct {
	client Client
	host   Host
	logger ports.Logger
}

// NewRunner creates a runner driving client against h.
func NewRunner(client Client, h Host, logger ports.Logger) *Runner {
	return &Runner{client: client, host: h, logger: logger}
}

// Run performs every step in order. A step whose outcome contradicts its
// expect_error flag stops the run.
func (r *Runner) Run(ctx context.Context, s *Scenario) (Result, error) {
	var res Result

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := r.step(ctx, step)
		res.Steps++

		switch {
		case err != nil && !step.ExpectError:
			return res, fmt.Errorf("steps[%d] %s: %w", i, step.Action, err)
		case err == nil && step.ExpectError:
			return res, fmt.Errorf("steps[%d] %s: expected an error", i, step.Action)
		case err != nil:
			res.Errors = append(res.Errors, err)
			r.logger.Debug("step failed as expected",
				ports.Int("step", i),
				ports.String("action", step.Action),
				ports.Err(err))
		default:
			r.logger.Debug("step done", ports.Int("step", i), ports.String("action", step.Action))
		}
	}

	r.client.Wait()
	return res, nil
}

func (r *Runner) step(ctx context.Context, step Step) error {
	w := r.host.Window

	switch step.Action {
	case ActionNavigate:
		w.History().PushState(nil, "", step.URL)
	case ActionReplace:
		w.History().ReplaceState(nil, "", step.URL)
	case ActionBack:
		if !w.Navigator().Back() {
			return fmt.Errorf("no previous entry")
		}
	case ActionForward:
		if !w.Navigator().Forward() {
			return fmt.Errorf("no next entry")
		}
	case ActionClick:
		if step.Element == nil {
			w.Click(step.Payload)
			return nil
		}
		w.Click(host.Element{Path: step.Element.Path, Text: step.Element.Text})
	case ActionProviderEvent:
		r.host.Provider.Emit(step.Event, step.Payload)
	case ActionRequest:
		_, err := r.host.Provider.Request(ctx, ports.RequestArguments{Method: step.Method, Params: step.Params})
		return err
	case ActionEvent:
		return r.client.Event(step.Event, walletscope.Attributes(step.Args))
	case ActionPage:
		return r.client.Page()
	case ActionWallet:
		return r.client.Wallet(walletscope.WalletInput{
			Account: str(step.Args, "account"),
			ChainID: str(step.Args, "chain_id"),
		})
	case ActionDisconnection:
		return r.client.Disconnection(walletscope.DisconnectionInput{
			Account: str(step.Args, "account"),
		})
	case ActionChain:
		return r.client.Chain(walletscope.ChainInput{
			ChainID: str(step.Args, "chain_id"),
			Account: str(step.Args, "account"),
		})
	case ActionTransaction:
		in := walletscope.TransactionInput{
			TransactionHash: str(step.Args, "transaction_hash"),
			ChainID:         str(step.Args, "chain_id"),
			Account:         str(step.Args, "account"),
		}
		if m, ok := step.Args["metadata"].(map[string]any); ok {
			in.Metadata = m
		}
		return r.client.Transaction(in)
	case ActionSignature:
		return r.client.Signature(walletscope.SignatureInput{
			Message:       str(step.Args, "message"),
			Account:       str(step.Args, "account"),
			SignatureHash: str(step.Args, "signature_hash"),
		})
	case ActionWait:
		r.client.Wait()
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

// str returns args[key] formatted as a string, or "".
func str(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

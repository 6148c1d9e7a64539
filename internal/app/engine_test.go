package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletscope/internal/adapters/host"
	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

func TestInit_IdentifiesWithoutCache(t *testing.T) {
	f := newFixture()
	e := f.init(t, testConfig(Tracking{}))

	calls := f.poster.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, postCall{baseURL: testBaseURL, apiKey: testAPIKey, path: PathIdentify}, calls[0])
	assert.Equal(t, testIdentity, e.IdentityID())

	_, ok := f.durable.Get(IdentityKey)
	assert.False(t, ok, "identity must not be stored when caching is off")
}

func TestInit_CachesIdentity(t *testing.T) {
	f := newFixture()
	cfg := testConfig(Tracking{})
	cfg.CacheIdentity = true
	f.init(t, cfg)

	id, ok := f.durable.Get(IdentityKey)
	require.True(t, ok)
	assert.Equal(t, testIdentity, id)

	// A second engine reuses the cached identity.
	f2 := newFixture()
	f2.durable = f.durable
	e2 := f2.init(t, cfg)
	assert.Equal(t, testIdentity, e2.IdentityID())
	assert.Empty(t, f2.poster.Calls())
}

func TestInit_BootstrapFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.poster.identifyErr = &domain.RequestError{URL: testBaseURL + PathIdentify, StatusCode: 500}

	e, err := Init(context.Background(), testConfig(AllTracking()), f.deps())
	require.Error(t, err)
	assert.Nil(t, e)
	assert.True(t, errors.Is(err, domain.ErrRequest))
	assert.Equal(t, 0, f.dialer.opens)
}

func TestInit_ChannelFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.dialer.err = errors.New("bad url")

	_, err := Init(context.Background(), testConfig(Tracking{}), f.deps())
	require.Error(t, err)
}

func TestInit_RequiresCollaborators(t *testing.T) {
	f := newFixture()
	deps := f.deps()
	deps.Window = nil

	_, err := Init(context.Background(), testConfig(Tracking{}), deps)
	require.Error(t, err)
}

func TestInit_OpensChannelWithQuery(t *testing.T) {
	f := newFixture()
	f.init(t, testConfig(Tracking{}))

	sessionID, ok := f.session.Get(SessionIDKey)
	require.True(t, ok)
	assert.Equal(t, testSessionID, sessionID)

	assert.Equal(t, testBaseURL, f.dialer.baseURL)
	assert.Equal(t, ports.ChannelQuery{
		APIKey:           testAPIKey,
		IdentityID:       testIdentity,
		SDKVersion:       testSDKVersion,
		ScreenWidth:      host.DefaultScreen.Width,
		ScreenHeight:     host.DefaultScreen.Height,
		ViewportWidth:    host.DefaultViewport.Width,
		ViewportHeight:   host.DefaultViewport.Height,
		URL:              testURL,
		SessionStorageID: testSessionID,
	}, f.dialer.query)
}

func TestInit_ReusesSessionID(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.session.Set(SessionIDKey, "existing-session"))

	e := f.init(t, testConfig(Tracking{}))
	assert.Equal(t, "existing-session", e.SessionID())
	assert.Equal(t, "existing-session", f.dialer.query.SessionStorageID)
}

func TestInit_FirstPageVisit(t *testing.T) {
	f := newFixture()
	f.init(t, testConfig(AllTracking()))

	envs := f.envelopes()
	require.NotEmpty(t, envs)
	assert.Equal(t, domain.Envelope{
		Event:      domain.EventPage,
		Attributes: domain.Attributes{"referrer": testReferrer},
		URL:        testURL,
	}, envs[0])

	current, ok := f.session.Get(CurrentURLKey)
	require.True(t, ok)
	assert.Equal(t, testURL, current)
}

func TestInit_NoPageVisitWhenPagesDisabled(t *testing.T) {
	f := newFixture()
	f.init(t, testConfig(Tracking{}))

	assert.Empty(t, f.envelopes())
	assert.Len(t, f.poster.Calls(), 1)
}

func TestInit_RegistersObservers(t *testing.T) {
	f := newFixture()
	e := f.init(t, testConfig(AllTracking()))

	assert.Equal(t, 1, f.provider.ListenerCount(ports.EventAccountsChanged))
	assert.Equal(t, 1, f.provider.ListenerCount(ports.EventChainChanged))
	assert.Equal(t, 1, f.window.ListenerCount(ports.EventClick))
	assert.Equal(t, 1, f.window.ListenerCount(ports.EventPopState))
	assert.Equal(t, 1, f.window.ListenerCount(ports.EventLocationChange))
	assert.ElementsMatch(t, []string{
		ports.EventAccountsChanged,
		ports.EventChainChanged,
		ports.EventClick,
		ports.EventPopState,
		ports.EventLocationChange,
	}, e.State().ListenerNames())

	assert.Len(t, f.provider.CallsTo(MethodAccounts), 1)
}

func TestInit_ReadOnlyProviderIsNotFatal(t *testing.T) {
	f := newFixture()
	f.provider = host.NewProvider(host.WithReadOnlyRequest())
	f.provider.HandleResult(MethodAccounts, []any{})

	e := f.init(t, testConfig(AllTracking()))
	e.Wait()

	reports := f.poster.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, domain.LogLevelWarning, reports[0].LogLevel)
	assert.Contains(t, reports[0].Data.Msg, "trackProvider: request is not replaceable")

	// Listeners still work without the request proxy.
	assert.Equal(t, 1, f.provider.ListenerCount(ports.EventAccountsChanged))
}

func TestInit_WithoutProvider(t *testing.T) {
	f := newFixture()
	f.provider = nil

	e := f.init(t, testConfig(AllTracking()))
	e.Wait()

	assert.Nil(t, e.Provider())
	assert.Empty(t, f.poster.Reports())
}

func TestEngine_Close(t *testing.T) {
	f := newFixture()
	e, err := Init(context.Background(), testConfig(AllTracking()), f.deps())
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.Equal(t, 0, f.provider.ListenerCount(ports.EventAccountsChanged))
	assert.Equal(t, 0, f.provider.ListenerCount(ports.EventChainChanged))
	assert.Equal(t, 0, f.window.ListenerCount(ports.EventClick))
	assert.Equal(t, 0, f.window.ListenerCount(ports.EventLocationChange))
	assert.Empty(t, e.State().ListenerNames())
	assert.True(t, f.channel.closed)

	assert.ErrorIs(t, e.Page(), domain.ErrClosed)
	assert.ErrorIs(t, e.Wallet(WalletInput{Account: testAccount, ChainID: testChainID}), domain.ErrClosed)
	assert.ErrorIs(t, e.Reconfigure(AllTracking()), domain.ErrClosed)
}

func TestEngine_Reconfigure(t *testing.T) {
	f := newFixture()
	e := f.initQuiet(t)

	assert.Equal(t, 0, f.window.ListenerCount(ports.EventClick))
	assert.Equal(t, 0, f.provider.ListenerCount(ports.EventChainChanged))

	require.NoError(t, e.Reconfigure(Tracking{Clicks: true, ChainChanges: true, Pages: true}))
	assert.Equal(t, 1, f.window.ListenerCount(ports.EventClick))
	assert.Equal(t, 1, f.provider.ListenerCount(ports.EventChainChanged))
	assert.Equal(t, 0, f.provider.ListenerCount(ports.EventAccountsChanged))
	assert.Equal(t, 1, f.window.ListenerCount(ports.EventLocationChange))

	f.window.History().PushState(nil, "", "/next")
	require.Len(t, f.envelopes(), 1)

	require.NoError(t, e.Reconfigure(Tracking{}))
	assert.Equal(t, 0, f.window.ListenerCount(ports.EventClick))
	assert.Equal(t, 0, f.provider.ListenerCount(ports.EventChainChanged))
	assert.Equal(t, 0, f.window.ListenerCount(ports.EventLocationChange))
	assert.Equal(t, Tracking{}, e.Tracking())

	f.window.History().PushState(nil, "", "/after")
	assert.Len(t, f.envelopes(), 1)
}

func TestEngine_Report(t *testing.T) {
	f := newFixture()
	e := f.initQuiet(t)

	e.Report(context.Background(), domain.LogLevelError, "TestError: this should not happen", nil)
	e.Report(context.Background(), domain.LogLevelWarning, "something odd", errors.New("boom"))

	calls := f.poster.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, postCall{
		baseURL: testBaseURL,
		apiKey:  testAPIKey,
		path:    PathLogSDK,
		payload: logPayload{
			LogLevel: domain.LogLevelError,
			Data: logData{
				IdentityID: testIdentity,
				Msg:        "TestError: this should not happen",
				APIKey:     testAPIKey,
				URL:        testURL,
			},
		},
	}, calls[1])
	assert.Equal(t, "something odd: boom", calls[2].payload.(logPayload).Data.Msg)
}

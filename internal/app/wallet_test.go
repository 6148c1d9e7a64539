package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

func TestWallet_AccountsChangedConnects(t *testing.T) {
	f := newFixture()
	e := f.init(t, testConfig(Tracking{WalletConnections: true}))

	f.provider.Emit(ports.EventAccountsChanged, []any{testAccount})

	assert.Equal(t, testAccount, e.State().Account())
	assert.Equal(t, testChainID, e.State().ChainID())

	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.EventConnect, envs[0].Event)
	assert.Equal(t, domain.Attributes{"chainId": testChainID, "account": testAccount}, envs[0].Attributes)
	assert.Len(t, f.provider.CallsTo(MethodChainID), 1)
}

func TestWallet_AccountsChangedDisconnects(t *testing.T) {
	f := newFixture()
	e := f.init(t, testConfig(Tracking{WalletConnections: true}))
	e.State().SetWallet(testAccount, testChainID)

	f.provider.Emit(ports.EventAccountsChanged, []any{})

	assert.Equal(t, "", e.State().Account())
	assert.Equal(t, "", e.State().ChainID())

	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.EventDisconnect, envs[0].Event)
	assert.Equal(t, domain.Attributes{"chainId": testChainID, "account": testAccount}, envs[0].Attributes)
}

func TestWallet_DisconnectWithoutAccountIsSilent(t *testing.T) {
	f := newFixture()
	f.init(t, testConfig(Tracking{WalletConnections: true}))

	f.provider.Emit(ports.EventAccountsChanged, []string{})
	assert.Empty(t, f.envelopes())
}

func TestWallet_DisconnectWithoutChain(t *testing.T) {
	f := newFixture()
	e := f.initQuiet(t)
	e.State().SetAccount(testAccount)

	e.handleAccountDisconnected()

	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.Attributes{"account": testAccount}, envs[0].Attributes)
}

func TestWallet_ConnectReportsChainFailure(t *testing.T) {
	f := newFixture()
	f.provider.HandleResult(MethodChainID, nil)
	e := f.init(t, testConfig(Tracking{WalletConnections: true}))

	f.provider.Emit(ports.EventAccountsChanged, []any{testAccount})
	e.Wait()

	assert.Empty(t, f.envelopes())
	reports := f.poster.Reports()
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0].Data.Msg, "chainIdHex is: undefined")
}

func TestWallet_ReportCurrentWalletOnInit(t *testing.T) {
	f := newFixture()
	f.provider.HandleResult(MethodAccounts, []any{testAccount})
	e := f.init(t, testConfig(Tracking{WalletConnections: true}))

	assert.Equal(t, testAccount, e.State().Account())
	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.EventConnect, envs[0].Event)

	calls := f.provider.CallsTo(MethodAccounts)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Params)
}

func TestWallet_ChainChanged(t *testing.T) {
	f := newFixture()
	e := f.init(t, testConfig(Tracking{ChainChanges: true}))
	e.State().SetAccount(testAccount)

	f.provider.Emit(ports.EventChainChanged, "0x1")

	assert.Equal(t, testChainID, e.State().ChainID())
	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.EventChainChanged, envs[0].Event)
	assert.Equal(t, domain.Attributes{"chainId": testChainID, "account": testAccount}, envs[0].Attributes)
	assert.Empty(t, f.provider.CallsTo(MethodRequestAccounts))
}

func TestWallet_ChainChangedFetchesAccount(t *testing.T) {
	f := newFixture()
	f.provider.HandleResult(MethodRequestAccounts, []any{testAccount})
	e := f.init(t, testConfig(Tracking{ChainChanges: true}))

	f.provider.Emit(ports.EventChainChanged, testChainID)

	assert.Equal(t, testAccount, e.State().Account())
	calls := f.provider.CallsTo(MethodRequestAccounts)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Params)

	envs := f.envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, domain.Attributes{"chainId": testChainID, "account": testAccount}, envs[0].Attributes)
}

func TestWallet_ChainChangedAccountFailures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fixture)
		wantReport string
	}{
		{
			name: "empty accounts",
			setup: func(f *fixture) {
				f.provider.HandleResult(MethodRequestAccounts, []any{})
			},
			wantReport: "chainChanged: unable to get account. eth_requestAccounts returned empty",
		},
		{
			name: "request error",
			setup: func(f *fixture) {
				f.provider.HandleError(MethodRequestAccounts, errors.New("TestError"))
			},
			wantReport: "chainChanged: unable to get account. eth_requestAccounts threw an error: TestError",
		},
		{
			name: "user rejection",
			setup: func(f *fixture) {
				f.provider.HandleError(MethodRequestAccounts, &ports.RPCError{Code: ports.CodeUserRejected, Message: "rejected"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)
			e := f.init(t, testConfig(Tracking{ChainChanges: true}))

			f.provider.Emit(ports.EventChainChanged, testChainID)
			e.Wait()

			assert.Empty(t, f.envelopes())
			assert.Equal(t, "", e.State().ChainID())

			reports := f.poster.Reports()
			if tt.wantReport == "" {
				assert.Empty(t, reports)
				return
			}
			require.Len(t, reports, 1)
			assert.Equal(t, domain.LogLevelError, reports[0].LogLevel)
			assert.Equal(t, tt.wantReport, reports[0].Data.Msg)
		})
	}
}

func TestWallet_ChainChangedWithoutProvider(t *testing.T) {
	f := newFixture()
	e := f.initQuiet(t)
	e.TrackProvider(nil)

	e.onChainChanged(testChainID)
	e.Wait()

	assert.Empty(t, f.envelopes())
	reports := f.poster.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "chainChanged: provider not found. CHAIN_CHANGED not reported", reports[0].Data.Msg)
}

func TestWallet_CurrentChainID(t *testing.T) {
	f := newFixture()
	e := f.initQuiet(t)

	chainID, err := e.currentChainID(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", chainID)

	e.TrackProvider(nil)
	_, err = e.currentChainID(e.ctx)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

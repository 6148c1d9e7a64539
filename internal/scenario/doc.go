// Package scenario loads YAML replay files and drives them against the
// in-memory host and a walletscope client.
//
// A scenario names the landing page, scripts the wallet provider's
// responses and lists the steps to perform:
//
//	name: swap
//	page: https://app.example/
//	provider:
//	  responses:
//	    eth_accounts: []
//	    eth_chainId: "0x1"
//	    eth_getTransactionCount: "0xd"
//	steps:
//	  - action: navigate
//	    url: /swap
//	  - action: provider_event
//	    event: accountsChanged
//	    payload: ["0x884151235a59c38b4e72550b0cf16781b08ef7b0"]
//	  - action: request
//	    method: eth_sendTransaction
//	    params: [{from: "0x8841...", to: "0x1234..."}]
//	  - action: wait
package scenario

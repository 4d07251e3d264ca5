package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"depositledger/core/state"
	"depositledger/native/deposit"
	"depositledger/storage"
)

const testAuthToken = "test-token"

func newTestServer(t *testing.T, whitelisted ...string) *Server {
	t.Helper()
	engine := deposit.NewEngine()
	engine.SetState(state.NewManager(storage.NewMemDB()))
	engine.SetPolicy(deposit.NewStaticTokenPolicy(whitelisted))
	engine.SetStorageByteCost(big.NewInt(1))
	server := NewServer(engine)
	server.SetAuthToken(testAuthToken)
	return server
}

func rpcCall(t *testing.T, server *Server, method string, params interface{}, auth bool) (*httptest.ResponseRecorder, RPCResponse) {
	t.Helper()
	encoded, err := json.Marshal(params)
	require.NoError(t, err)
	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":[%s]}`, method, encoded)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testAuthToken)
	}
	recorder := httptest.NewRecorder()
	server.handle(recorder, req)
	var resp RPCResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder, resp
}

// Storage deposit for the base record plus n token slots at byte cost 1.
func storageFor(n int64) string {
	return depositUsage(n).String()
}

func depositUsage(tokens int64) *big.Int {
	record := deposit.NewAccountDeposit()
	for i := int64(0); i < tokens; i++ {
		record.Tokens[fmt.Sprintf("t%d", i)] = big.NewInt(0)
	}
	return record.StorageUsage(big.NewInt(1))
}

func TestRegisterAccountRequiresAuth(t *testing.T) {
	server := newTestServer(t)
	recorder, resp := rpcCall(t, server, "deposit_registerAccount",
		registerAccountParams{Account: "alice", Amount: "100"}, false)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestDepositLifecycleOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := rpcCall(t, server, "deposit_registerAccount",
		registerAccountParams{Account: "alice", Amount: storageFor(1)}, true)
	require.Nil(t, resp.Error)

	_, resp = rpcCall(t, server, "deposit_registerTokens",
		registerTokensParams{Caller: "alice", Tokens: []string{"tokenx"}}, false)
	require.Nil(t, resp.Error)

	_, resp = rpcCall(t, server, "deposit_credit",
		creditParams{Account: "alice", Token: "tokenx", Amount: "100"}, true)
	require.Nil(t, resp.Error)

	_, resp = rpcCall(t, server, "deposit_getBalance",
		balanceParams{Account: "alice", Token: "tokenx"}, false)
	require.Nil(t, resp.Error)
	encoded, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var balance balanceResult
	require.NoError(t, json.Unmarshal(encoded, &balance))
	require.Equal(t, "100", balance.Balance)

	unregister := true
	_, resp = rpcCall(t, server, "deposit_withdraw",
		withdrawParams{Caller: "alice", Token: "tokenx", Amount: "100", Unregister: &unregister, Attached: "1"}, false)
	require.Nil(t, resp.Error)

	_, resp = rpcCall(t, server, "deposit_getBalance",
		balanceParams{Account: "alice", Token: "tokenx"}, false)
	require.Nil(t, resp.Error)
}

func TestWithdrawWithoutAttachmentRejected(t *testing.T) {
	server := newTestServer(t)
	_, resp := rpcCall(t, server, "deposit_registerAccount",
		registerAccountParams{Account: "alice", Amount: storageFor(1)}, true)
	require.Nil(t, resp.Error)
	_, resp = rpcCall(t, server, "deposit_registerTokens",
		registerTokensParams{Caller: "alice", Tokens: []string{"tokenx"}}, false)
	require.Nil(t, resp.Error)

	recorder, resp := rpcCall(t, server, "deposit_withdraw",
		withdrawParams{Caller: "alice", Token: "tokenx", Amount: "1"}, false)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeDepositForbidden, resp.Error.Code)
	require.Equal(t, "confirmation_required", resp.Error.Message)
}

func TestRegisterTokensInsufficientStorage(t *testing.T) {
	server := newTestServer(t)
	_, resp := rpcCall(t, server, "deposit_registerAccount",
		registerAccountParams{Account: "alice", Amount: storageFor(0)}, true)
	require.Nil(t, resp.Error)

	recorder, resp := rpcCall(t, server, "deposit_registerTokens",
		registerTokensParams{Caller: "alice", Tokens: []string{"tokenx"}}, false)
	require.Equal(t, http.StatusConflict, recorder.Code)
	require.NotNil(t, resp.Error)
	require.Equal(t, "insufficient_storage", resp.Error.Message)
}

func TestUnknownAccountMapsToNotFound(t *testing.T) {
	server := newTestServer(t)
	recorder, resp := rpcCall(t, server, "deposit_registerTokens",
		registerTokensParams{Caller: "ghost", Tokens: []string{"tokenx"}}, false)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.NotNil(t, resp.Error)
	require.Equal(t, "account_not_registered", resp.Error.Message)
}

func TestMethodNotFound(t *testing.T) {
	server := newTestServer(t)
	recorder, resp := rpcCall(t, server, "deposit_unknown", accountParams{Account: "x"}, false)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"depositledger/native/deposit"
)

const (
	codeDepositInvalidParams = -32041
	codeDepositNotFound      = -32042
	codeDepositForbidden     = -32043
	codeDepositConflict      = -32044
	codeDepositInternal      = -32045
)

type registerTokensParams struct {
	Caller string   `json:"caller"`
	Tokens []string `json:"tokens"`
}

type withdrawParams struct {
	Caller     string `json:"caller"`
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	Unregister *bool  `json:"unregister,omitempty"`
	Attached   string `json:"attached"`
}

type registerAccountParams struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type creditParams struct {
	Account string `json:"account"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}

type balanceParams struct {
	Account string `json:"account"`
	Token   string `json:"token"`
}

type accountParams struct {
	Account string `json:"account"`
}

type balanceResult struct {
	Balance string `json:"balance"`
}

type storageBalanceResult struct {
	Total     string `json:"total"`
	Available string `json:"available"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAmountParam(name, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("%s required", name)
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", name, value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%s must not be negative", name)
	}
	return amount, nil
}

// writeDepositError maps the engine's typed failures onto module error
// codes in the same way every call aborts in the engine: nothing was
// persisted, so the caller simply sees the terminal outcome.
func writeDepositError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, deposit.ErrNotRegistered):
		writeError(w, http.StatusNotFound, id, codeDepositNotFound, "account_not_registered", err.Error())
	case errors.Is(err, deposit.ErrUnknownToken):
		writeError(w, http.StatusNotFound, id, codeDepositNotFound, "token_not_registered", err.Error())
	case errors.Is(err, deposit.ErrTokenNotWhitelisted):
		writeError(w, http.StatusForbidden, id, codeDepositForbidden, "token_not_whitelisted", err.Error())
	case errors.Is(err, deposit.ErrConfirmationRequired):
		writeError(w, http.StatusForbidden, id, codeDepositForbidden, "confirmation_required", err.Error())
	case errors.Is(err, deposit.ErrInsufficientStorage):
		writeError(w, http.StatusConflict, id, codeDepositConflict, "insufficient_storage", err.Error())
	case errors.Is(err, deposit.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, id, codeDepositConflict, "insufficient_balance", err.Error())
	case errors.Is(err, deposit.ErrNonZeroUnregister):
		writeError(w, http.StatusConflict, id, codeDepositConflict, "non_zero_unregister", err.Error())
	case errors.Is(err, deposit.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, id, codeDepositInvalidParams, "invalid_params", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, id, codeDepositInternal, "internal_error", err.Error())
	}
}

func (s *Server) handleRegisterTokens(w http.ResponseWriter, req *RPCRequest) {
	var params registerTokensParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.RegisterTokens(params.Caller, params.Tokens); err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUnregisterTokens(w http.ResponseWriter, req *RPCRequest) {
	var params registerTokensParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.UnregisterTokens(params.Caller, params.Tokens); err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, req *RPCRequest) {
	var params withdrawParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parseAmountParam("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	// The attachment is the single-intent confirmation; it must decode even
	// when absent so the engine can reject it.
	attached := big.NewInt(0)
	if strings.TrimSpace(params.Attached) != "" {
		attached, err = parseAmountParam("attached", params.Attached)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
			return
		}
	}
	unregister := params.Unregister != nil && *params.Unregister
	if err := s.engine.Withdraw(params.Caller, params.Token, amount, unregister, attached); err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params registerAccountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parseAmountParam("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.RegisterAccount(params.Account, amount); err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params creditParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parseAmountParam("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.Deposit(params.Account, params.Token, amount); err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	balance, err := s.engine.DepositBalance(params.Account, params.Token)
	if err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Balance: balance.String()})
}

func (s *Server) handleStorageBalance(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeDepositInvalidParams, "invalid_params", err.Error())
		return
	}
	total, available, err := s.engine.StorageBalance(params.Account)
	if err != nil {
		writeDepositError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, storageBalanceResult{Total: total.String(), Available: available.String()})
}

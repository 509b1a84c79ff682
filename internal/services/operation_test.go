package services

import (
	"encoding/json"
	"testing"

	"github.com/adminbank/backend/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("transfer", func(t *testing.T) {
		op, err := ParseOperation(ProcessTransfer, json.RawMessage(`{"senderEmail":"a@x.io","receiverEmail":"b@x.io","transferAmount":"12.50","note":"lunch"}`), vh)
		require.NoError(t, err)
		transfer, ok := op.(TransferOp)
		require.True(t, ok)
		assert.Equal(t, "a@x.io", transfer.SenderEmail)
		assert.True(t, transfer.Amount.Equal(amount("12.5")))
		assert.Equal(t, ProcessTransfer, op.Process())
	})

	t.Run("numeric amounts are accepted", func(t *testing.T) {
		op, err := ParseOperation(ProcessDeposit, json.RawMessage(`{"userEmail":"a@x.io","amount":100}`), vh)
		require.NoError(t, err)
		assert.True(t, op.(DepositOp).Amount.Equal(amount("100")))
	})

	t.Run("withdraw", func(t *testing.T) {
		op, err := ParseOperation(ProcessWithdraw, json.RawMessage(`{"userEmail":"a@x.io","amount":"0.01"}`), vh)
		require.NoError(t, err)
		assert.IsType(t, WithdrawOp{}, op)
	})

	t.Run("list defaults to ascending", func(t *testing.T) {
		op, err := ParseOperation(ProcessList, json.RawMessage(`{"userEmail":"a@x.io"}`), vh)
		require.NoError(t, err)
		assert.Equal(t, store.OrderAsc, op.(ListOp).SortOrder())

		op, err = ParseOperation(ProcessList, json.RawMessage(`{"userEmail":"a@x.io","order":"desc"}`), vh)
		require.NoError(t, err)
		assert.Equal(t, store.OrderDesc, op.(ListOp).SortOrder())
	})

	t.Run("unknown process", func(t *testing.T) {
		_, err := ParseOperation("refund", json.RawMessage(`{}`), vh)
		assert.ErrorIs(t, err, ErrUnknownProcess)
	})

	t.Run("missing data", func(t *testing.T) {
		_, err := ParseOperation(ProcessDeposit, nil, vh)
		assert.ErrorIs(t, err, ErrInvalidPayload)

		_, err = ParseOperation(ProcessDeposit, json.RawMessage(`null`), vh)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseOperation(ProcessDeposit, json.RawMessage(`{"userEmail":"a@x.io","amount":"1","bonus":true}`), vh)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("payload of another process", func(t *testing.T) {
		_, err := ParseOperation(ProcessWithdraw, json.RawMessage(`{"senderEmail":"a@x.io","receiverEmail":"b@x.io","transferAmount":"1"}`), vh)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := ParseOperation(ProcessWithdraw, json.RawMessage(`{"userEmail":"a@x.io","amount":"0"}`), vh)
		assert.ErrorIs(t, err, ErrNonPositive)

		_, err = ParseOperation(ProcessTransfer, json.RawMessage(`{"senderEmail":"a@x.io","receiverEmail":"b@x.io","transferAmount":"-3"}`), vh)
		assert.ErrorIs(t, err, ErrNonPositive)
	})

	t.Run("amount scale and magnitude are bounded", func(t *testing.T) {
		for _, raw := range []string{`"1e-20000000"`, `"1e20000000"`, `"0.0000000000000000001"`, `"1000000000000000000000000000000"`} {
			_, err := ParseOperation(ProcessWithdraw, json.RawMessage(`{"userEmail":"a@x.io","amount":`+raw+`}`), vh)
			assert.ErrorIs(t, err, ErrAmountOutOfRange, raw)
		}

		op, err := ParseOperation(ProcessDeposit, json.RawMessage(`{"userEmail":"a@x.io","amount":"999999999999999999999999999999.000000000000000001"}`), vh)
		require.NoError(t, err)
		assert.Equal(t, int32(-18), op.(DepositOp).Amount.Exponent())
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := ParseOperation(ProcessDeposit, json.RawMessage(`{"userEmail":"nope","amount":"1"}`), vh)
		var fieldErrs validator.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "userEmail", fieldErrs[0].Field())
	})

	t.Run("invalid order", func(t *testing.T) {
		_, err := ParseOperation(ProcessList, json.RawMessage(`{"userEmail":"a@x.io","order":"sideways"}`), vh)
		var fieldErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &fieldErrs)
	})
}

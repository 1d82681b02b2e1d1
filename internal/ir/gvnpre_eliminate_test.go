package ir

import "testing"

// TestRewriteOperandsPatchesRequireLogABIEnc covers the three operand-
// consuming instruction kinds rewriteOperands previously had no case for:
// a replaced value feeding a require, a log, or an ABI u256 encode must
// have every one of those consumers redirected, not just the arithmetic
// and memory instruction kinds.
func TestRewriteOperandsPatchesRequireLogABIEnc(t *testing.T) {
	oldVal := &Value{Name: "old", Type: u256()}
	newVal := &Value{Name: "new", Type: u256()}
	other := &Value{Name: "other", Type: u256()}

	require := &RequireInstruction{ID: 1, Condition: oldVal, Error: other}
	rewriteOperands(require, oldVal, newVal)
	if require.Condition != newVal {
		t.Fatal("require's Condition operand must be rewritten")
	}
	if require.Error != other {
		t.Fatal("require's Error operand must be left untouched when it doesn't match oldVal")
	}

	log := &LogInstruction{
		ID:        2,
		Signature: oldVal,
		TopicArgs: []*Value{oldVal, other},
		DataPtr:   oldVal,
		DataLen:   other,
	}
	rewriteOperands(log, oldVal, newVal)
	if log.Signature != newVal {
		t.Fatal("log's Signature operand must be rewritten")
	}
	if log.TopicArgs[0] != newVal || log.TopicArgs[1] != other {
		t.Fatal("log's TopicArgs must be rewritten element-wise")
	}
	if log.DataPtr != newVal {
		t.Fatal("log's DataPtr operand must be rewritten")
	}
	if log.DataLen != other {
		t.Fatal("log's DataLen operand must be left untouched when it doesn't match oldVal")
	}

	abiEnc := &ABIEncU256Instruction{ID: 3, Value: oldVal}
	rewriteOperands(abiEnc, oldVal, newVal)
	if abiEnc.Value != newVal {
		t.Fatal("ABI encode's Value operand must be rewritten")
	}
}


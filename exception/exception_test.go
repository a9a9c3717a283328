package exception

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindNamesAreDenseAndQueryable(t *testing.T) {
	for k := Kind(0); k < Kind(NumKinds()); k++ {
		assert.NotEmpty(t, k.Name())
		assert.NotEmpty(t, k.Description())
		assert.NotContains(t, k.Name(), "kind(")
	}
}

func TestUnknownKindFallsBackToNumericRendering(t *testing.T) {
	unknown := Kind(NumKinds() + 10)
	assert.Contains(t, unknown.Name(), "kind(")
	assert.Equal(t, "unknown exception kind", unknown.Description())
}

func TestSpecialKinds(t *testing.T) {
	assert.True(t, Return.IsSpecial())
	assert.True(t, Retry.IsSpecial())
	assert.True(t, End.IsSpecial())
	assert.True(t, Yield.IsSpecial())
	assert.False(t, Other.IsSpecial())
	assert.False(t, WrongType.IsSpecial())
}

func TestThrownError(t *testing.T) {
	th := New(WrongType, 42)
	assert.Contains(t, th.Error(), "wrong-type")
	assert.Contains(t, th.Error(), "42")
}

func TestRetvalIsReturnKind(t *testing.T) {
	th := Retval(99)
	assert.Equal(t, Return, th.Kind)
	assert.Equal(t, 99, th.Payload)
}

func TestEndAndYieldSentinels(t *testing.T) {
	assert.Equal(t, End, EndOfWork().Kind)
	assert.Equal(t, Yield, YieldRequest().Kind)
}

func TestRetryRequestIsRetryKind(t *testing.T) {
	assert.Equal(t, Retry, RetryRequest().Kind)
}

func TestNamedKindsMatchSpec(t *testing.T) {
	cases := map[Kind]string{
		Other:          "other",
		WrongType:      "wrong-type",
		LowIndex:       "low-index",
		HighIndex:      "high-index",
		Memory:         "memory",
		NeedObject:     "need-object",
		NoMetamethod:   "no-metamethod",
		Constructor:    "constructor",
		Overflow:       "overflow",
		TupleArgs:      "tuple-args",
		DivisionByZero: "division-by-zero",
	}
	for k, name := range cases {
		assert.Equal(t, name, k.Name())
	}
}

package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("fixctl-a", "POST", "/decode", 200, 12*time.Millisecond)
	RecordDictionary(17, 1)
	if got := testutil.ToFloat64(dictionarySize.WithLabelValues("fields")); got != 17 {
		t.Fatalf("unexpected dictionary gauge: %v", got)
	}
}

func TestRecordDecodeOutcomes(t *testing.T) {
	testlog.Start(t)
	ok := &protocol.Message{Fields: map[string]protocol.Value{"MsgType": protocol.Scalar("D")}}
	cut := &protocol.Message{Fields: map[string]protocol.Value{}, Truncated: true}

	before := testutil.ToFloat64(decodeMessages.WithLabelValues("test", OutcomeTruncated))
	RecordDecode("test", ok, nil, time.Microsecond)
	RecordDecode("test", cut, nil, time.Microsecond)
	RecordDecode("test", nil, errors.New("bad tag"), time.Microsecond)

	if got := testutil.ToFloat64(decodeMessages.WithLabelValues("test", OutcomeTruncated)); got != before+1 {
		t.Fatalf("expected one more truncated decode, got %v (before %v)", got, before)
	}
	if DecodeOutcome(ok, nil) != OutcomeOK || DecodeOutcome(nil, errors.New("x")) != OutcomeError {
		t.Fatalf("unexpected outcome classification")
	}
}

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	require.Panics(t, func() { RegisterCollectors(reg) })

	ContactMessages.WithLabelValues(ResultOK).Inc()
	expected := `
# HELP portfolio_contact_messages_total Number of contact form submissions by result.
# TYPE portfolio_contact_messages_total counter
portfolio_contact_messages_total{result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "portfolio_contact_messages_total"))
}

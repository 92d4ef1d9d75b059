package wallet

import "time"

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordBalanceChange(walletID uint, oldBalance, newBalance int64)
	RecordError(operation, errType string)
	RecordTransaction(txType string, amount int64)
}

package topics

const (
	// Transações concluídas/falhas publicadas pelo payments-service
	TransactionEvents = "transaction_events"

	// DLQs
	TransactionEventsDLQ = "transaction_events_dlq"

	// Canal Redis Pub/Sub usado para empurrar saldo/notificações via WebSocket
	WalletUpdatesChannel = "wallet_updates_broadcast"
)

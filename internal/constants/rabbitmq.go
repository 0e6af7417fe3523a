package constants

// Обменники
const (
	MarketEventsExchange = "dreamsquare.market.events"
	CommandsExchange     = "dreamsquare.commands"
)

// Имена очередей
const (
	QueuePurgeAgentListings = "purge_agent_listings"
)

// Ключи маршрутизации
const (
	RoutingKeyPurgeAgentListings = "users.fraud.purge_listings"

	// Префикс событий рынка, полный ключ - "market.offer.accepted" и т.п.
	RoutingKeyMarketEventPrefix = "market."
)

const (
	PurgeRetryExchange   = "purge_agent_listings_retry_dlx"
	PurgeRetryQueue      = "purge_agent_listings_retry"
	PurgeRetryRoutingKey = "purge.retry.key"
	PurgeRetryDelayMs    = 30000
	PurgeMaxRetries      = 5

	FinalDLXExchange   = "purge_agent_listings_final_dlx"
	FinalDLQ           = "purge_agent_listings_final_dlq"
	FinalDLQRoutingKey = "purge.dlq.key"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

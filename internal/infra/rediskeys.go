package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "hrm"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanNotifications - широковещательные уведомления для всех клиентов.
	RedisChanNotifications = RedisNamespace + ":notifications"
	// RedisChanOrgUpdate - сигнал "оргструктура изменилась, перечитай кэш".
	RedisChanOrgUpdate = RedisNamespace + ":org:update"
)

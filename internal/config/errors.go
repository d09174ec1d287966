package config

import "errors"

var (
	ErrDBURLEmpty          = errors.New("DB_URL is empty")
	ErrInvalidAppDomain    = errors.New("APP_DOMAIN is invalid")
	ErrInvalidTrackingMode = errors.New("TRACKING_MODE must be one of sync, background, queue")
	ErrRabbitMQURLEmpty    = errors.New("RABBITMQ_URL is empty")

	ErrInvalidDuration = errors.New("invalid duration env")
	ErrInvalidInt      = errors.New("invalid int env")
)

package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	RequestStart ContextKey = "requestStart"
	InitDataKey  ContextKey = "initData"
)

// InitDataHeader carries the Telegram WebApp init data from the webview.
const InitDataHeader = "X-Telegram-Init-Data"

const DateLayout = "2006-01-02"

var Validate = validator.New(validator.WithRequiredStructEnabled())

package shared

import (
	"github.com/go-playground/form"
)

// Decoder decodes url.Values into tagged structs (`form:"..."`).
var Decoder = form.NewDecoder()

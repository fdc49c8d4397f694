package authz

import (
	_ "embed"
)

//go:embed policy/model.conf
var defaultModel string

//go:embed policy/policy.csv
var defaultPolicy string

const (
	ObjectForms = "miniapp.forms"
	ObjectUsers = "miniapp.users"
)

package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain operations
var (
	ErrProjectNotFound = goerr.New("project not found")
	ErrGroupNotFound   = goerr.New("group not found")
	ErrNoWeeklyStatus  = goerr.New("no weekly status recorded")
)

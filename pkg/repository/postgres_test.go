package repository

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestRelationQuoting(t *testing.T) {
	// Database names come from user-facing project and group names, so
	// the rendered relation must always be quoted.
	gt.Equal(t, relation("db_p1", "account"), `"db_p1"."account"`)
	gt.Equal(t, relation("db p1", "defect"), `"db p1"."defect"`)

	// Embedded quotes must not break out of the identifier
	gt.Equal(t, relation(`db"p1`, "account"), `"db""p1"."account"`)
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "")
	gt.Error(t, err)
}

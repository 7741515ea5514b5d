package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTestCase(t *testing.T) {
	all := []StaticField{{Name: "owner"}, {Name: "timeout"}, {Name: "priority"}, {Name: "status"}}
	entry := []Function{{Name: "helper"}, {Name: "run_test"}}

	tests := []struct {
		name  string
		class Class
		want  bool
	}{
		{"complete", Class{StaticFields: all, Functions: entry}, true},
		{"camel case entry", Class{StaticFields: all, Functions: []Function{{Name: "runTest"}}}, true},
		{"no entry", Class{StaticFields: all, Functions: []Function{{Name: "helper"}}}, false},
		{"missing owner", Class{StaticFields: all[1:], Functions: entry}, false},
		{"missing status", Class{StaticFields: all[:3], Functions: entry}, false},
		{"nothing", Class{}, false},
		{"order independent", Class{
			StaticFields: []StaticField{{Name: "status"}, {Name: "tags"}, {Name: "priority"}, {Name: "timeout"}, {Name: "owner"}},
			Functions:    []Function{{Name: "runTest"}, {Name: "a"}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTestCase(tt.class))
		})
	}
}

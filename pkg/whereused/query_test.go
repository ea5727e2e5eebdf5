package whereused

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectQuery(t *testing.T) {
	tests := []struct {
		name       string
		objectName string
		objectType string
		maxResults int
		want       ObjectQuery
	}{
		{
			name:       "uppercases and trims",
			objectName: "  sbook ",
			objectType: "table",
			maxResults: 10,
			want:       ObjectQuery{Name: "SBOOK", DeclaredType: TypeTable, MaxResults: 10},
		},
		{
			name:       "zero max defaults",
			objectName: "ZCL_TEST",
			objectType: "CLASS",
			want:       ObjectQuery{Name: "ZCL_TEST", DeclaredType: TypeClass, MaxResults: DefaultMaxResults},
		},
		{
			name:       "negative max defaults",
			objectName: "ZPROG",
			objectType: "Program",
			maxResults: -3,
			want:       ObjectQuery{Name: "ZPROG", DeclaredType: TypeProgram, MaxResults: DefaultMaxResults},
		},
		{
			name:       "missing type is unknown",
			objectName: "/ui5/cl_repository_load",
			want:       ObjectQuery{Name: "/UI5/CL_REPOSITORY_LOAD", DeclaredType: TypeUnknown, MaxResults: DefaultMaxResults},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewObjectQuery(tt.objectName, tt.objectType, tt.maxResults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewObjectQuery_EmptyName(t *testing.T) {
	for _, name := range []string{"", "   "} {
		_, err := NewObjectQuery(name, "TABLE", 10)
		assert.ErrorIs(t, err, ErrEmptyObjectName)
	}
}

func TestParseObjectType(t *testing.T) {
	tests := map[string]ObjectType{
		"CLASS":     TypeClass,
		"interface": TypeInterface,
		" Function": TypeFunction,
		"STRUCTURE": TypeStructure,
		"":          TypeUnknown,
		"VIEW":      TypeUnknown,
		"UNKNOWN":   TypeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseObjectType(in), "ParseObjectType(%q)", in)
	}
}

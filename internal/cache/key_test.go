package cache_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/cache"
)

// TestGenerateKey verifies deterministic cache key generation.
func TestGenerateKey(t *testing.T) {
	tests := []struct {
		name   string
		params cache.KeyParams
	}{
		{
			name: "simple args",
			params: cache.KeyParams{
				Category: cache.CategoryCompanyInfo,
				Args:     map[string]string{"corp_code": "00126380"},
			},
		},
		{
			name: "multiple args",
			params: cache.KeyParams{
				Category: cache.CategoryFinancialStatement,
				Args: map[string]string{
					"corp_code":  "00126380",
					"bsns_year":  "2023",
					"reprt_code": "11011",
					"fs_div":     "CFS",
				},
			},
		},
		{
			name: "korean identifier",
			params: cache.KeyParams{
				Category: cache.CategoryDisclosureList,
				Args:     map[string]string{"corp_name": "삼성전자"},
			},
		},
		{
			name: "no args",
			params: cache.KeyParams{
				Category: cache.CategoryIndustryReport,
				Args:     nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1, err := cache.GenerateKey(tt.params)
			require.NoError(t, err)
			require.NotEmpty(t, key1)

			key2, err := cache.GenerateKey(tt.params)
			require.NoError(t, err)

			// Deterministic across invocations.
			assert.Equal(t, key1, key2)

			// Category prefix plus 64 hex chars of SHA256.
			prefix := tt.params.Category.String() + ":"
			require.True(t, strings.HasPrefix(key1, prefix))
			assert.Len(t, strings.TrimPrefix(key1, prefix), 64)
		})
	}
}

// TestGenerateKey_Normalization verifies argument normalization: order,
// whitespace, case, and Unicode representation must not affect the key.
func TestGenerateKey_Normalization(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]string
		b    map[string]string
	}{
		{
			name: "case in identifiers",
			a:    map[string]string{"fs_div": "CFS", "reprt_code": "11011"},
			b:    map[string]string{"fs_div": "cfs", "reprt_code": "11011"},
		},
		{
			name: "surrounding whitespace",
			a:    map[string]string{"corp_name": "  삼성전자  "},
			b:    map[string]string{"corp_name": "삼성전자"},
		},
		{
			name: "internal whitespace runs",
			a:    map[string]string{"corp_name": "LG  에너지솔루션"},
			b:    map[string]string{"corp_name": "LG 에너지솔루션"},
		},
		{
			name: "nfkc fullwidth digits",
			a:    map[string]string{"bsns_year": "２０２３"},
			b:    map[string]string{"bsns_year": "2023"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1, err := cache.GenerateKey(cache.KeyParams{Category: cache.CategoryCompanyInfo, Args: tt.a})
			require.NoError(t, err)

			key2, err := cache.GenerateKey(cache.KeyParams{Category: cache.CategoryCompanyInfo, Args: tt.b})
			require.NoError(t, err)

			assert.Equal(t, key1, key2)
		})
	}
}

// TestGenerateKey_Distinct verifies different logical requests get
// different keys.
func TestGenerateKey_Distinct(t *testing.T) {
	base := map[string]string{"corp_code": "00126380", "bsns_year": "2023"}

	baseKey, err := cache.GenerateKey(cache.KeyParams{Category: cache.CategoryFinancialStatement, Args: base})
	require.NoError(t, err)

	t.Run("different category", func(t *testing.T) {
		key, err := cache.GenerateKey(cache.KeyParams{Category: cache.CategoryFinancialRatio, Args: base})
		require.NoError(t, err)
		assert.NotEqual(t, baseKey, key)
	})

	t.Run("different arg value", func(t *testing.T) {
		key, err := cache.GenerateKey(cache.KeyParams{
			Category: cache.CategoryFinancialStatement,
			Args:     map[string]string{"corp_code": "00126380", "bsns_year": "2022"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, baseKey, key)
	})

	t.Run("arg name vs value boundary", func(t *testing.T) {
		key1, err := cache.GenerateKey(cache.KeyParams{
			Category: cache.CategoryFinancialStatement,
			Args:     map[string]string{"ab": "c"},
		})
		require.NoError(t, err)

		key2, err := cache.GenerateKey(cache.KeyParams{
			Category: cache.CategoryFinancialStatement,
			Args:     map[string]string{"a": "bc"},
		})
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

// TestGenerateKey_UnknownCategory verifies the closed-set check.
func TestGenerateKey_UnknownCategory(t *testing.T) {
	_, err := cache.GenerateKey(cache.KeyParams{
		Category: cache.Category("nonexistent-category"),
		Args:     map[string]string{"corp_code": "00126380"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrUnknownCategory)
}

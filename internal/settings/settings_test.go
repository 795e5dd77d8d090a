package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/spdash/internal/model"
)

func load(t *testing.T, path string) Source {
	t.Helper()
	v, err := NewViper(path)
	require.NoError(t, err)
	require.NoError(t, ReadConfig(v))

	var src Source
	require.NoError(t, v.Unmarshal(&src))
	return src
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	src := load(t, filepath.Join(t.TempDir(), "missing.yml"))

	require.Equal(t, model.DefaultListTitle, src.ListTitle)
	require.Equal(t, model.DefaultFields, src.Fields)
	require.Equal(t, model.DefaultRequestTimeout, src.RequestTimeout)
	require.ErrorContains(t, src.Validate(), "site-url is required")
}

func TestConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
site-url: https://contoso.sharepoint.com/sites/fleet
list-title: parking
fields: [ID, plate, brand, stay]
category-field: brand
label-field: plate
duration-field: stay
request-timeout: 5s
access-token: abc
`), 0o644))

	src := load(t, path)
	require.NoError(t, src.Validate())

	schema := src.Schema()
	require.Equal(t, "parking", schema.ListTitle)
	require.Equal(t, []string{"ID", "plate", "brand", "stay"}, schema.Fields)
	require.Equal(t, "brand", schema.CategoryField)
	require.Equal(t, model.DefaultCategorySentinel, schema.CategorySentinel)
	require.Equal(t, model.MaxRows, schema.MaxRows)
	require.Equal(t, "abc", src.Auth().AccessToken)

	client, err := src.NewClient(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://contoso.sharepoint.com/sites/fleet", client.SiteURL())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SPDASH_SITE_URL", "https://env.example.com/sites/a")
	t.Setenv("SPDASH_LIST_TITLE", "from-env")

	src := load(t, filepath.Join(t.TempDir(), "missing.yml"))
	require.Equal(t, "https://env.example.com/sites/a", src.SiteURL)
	require.Equal(t, "from-env", src.ListTitle)
	require.NoError(t, src.Validate())
}

func TestMalformedConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("site-url: [unclosed\n"), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	require.Error(t, ReadConfig(v))
}

func TestNewClient_IncompleteCredentials(t *testing.T) {
	src := Source{SiteURL: "https://contoso.sharepoint.com", ClientID: "id"}
	_, err := src.NewClient(context.Background())
	require.Error(t, err)
}

package scan

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/testutil"
)

func requireGoCommand(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping go/packages test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
}

func TestPackagesLoader_ShopModule(t *testing.T) {
	requireGoCommand(t)
	dir := testutil.ShopModule(t)

	units, err := PackagesLoader{}.Load(context.Background(), Options{Dir: dir, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	parsed, err := ParserLoader{}.Load(context.Background(), Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, qualifiedNames(parsed), qualifiedNames(units))

	svc := findUnit(t, units, "example.com/shop/service.OrderService")
	assert.Equal(t, []string{"example.com/shop/web.OrderController", "fmt.Sprint"}, depNames(svc))
	assert.Equal(t, "service/order.go", svc.Dependencies[0].Pos.File)
	assert.Equal(t, 10, svc.Dependencies[0].Pos.Line)
}

func TestPackagesLoader_ResolvesMethodsAndDotImports(t *testing.T) {
	requireGoCommand(t)
	dir := testutil.WriteModule(t, "example.com/app", map[string]string{
		"web/web.go": `package web

type Session struct{}

func (s *Session) User() string { return "" }

func Current() *Session { return &Session{} }
`,
		"service/service.go": `package service

import . "example.com/app/web"

func Who() string {
	return Current().User()
}
`,
	})

	units, err := PackagesLoader{}.Load(context.Background(), Options{Dir: dir})
	require.NoError(t, err)

	who := findUnit(t, units, "example.com/app/service.Who")
	assert.Equal(t, []string{"example.com/app/web.Current", "example.com/app/web.Session"}, depNames(who))

	pkgUnit := findUnit(t, units, "example.com/app/service.package")
	assert.Equal(t, []string{"example.com/app/web"}, depNames(pkgUnit))
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ShopModulePath is the module path of ShopModule.
const ShopModulePath = "example.com/shop"

// WriteModule writes files into a fresh temp dir and returns it. Keys are
// slash-separated paths relative to the module root. A go.mod for modulePath
// is added unless files already has one or modulePath is empty.
func WriteModule(t testing.TB, modulePath string, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	if _, ok := files["go.mod"]; !ok && modulePath != "" {
		files = withGoMod(files, modulePath)
	}

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func withGoMod(files map[string]string, modulePath string) map[string]string {
	out := make(map[string]string, len(files)+1)
	for k, v := range files {
		out[k] = v
	}
	out["go.mod"] = "module " + modulePath + "\n\ngo 1.24\n"
	return out
}

// ShopFiles is a small module with one service-to-web violation:
// service.OrderService references web.OrderController in service/order.go
// line 10. The web package depends on the service package, which is allowed.
func ShopFiles() map[string]string {
	return map[string]string{
		"web/controller.go": `package web

// OrderController serves orders over HTTP.
type OrderController struct {
	Prefix string
}

func NewOrderController() *OrderController {
	return &OrderController{Prefix: "/orders"}
}
`,
		"web/routes.go": `package web

import "example.com/shop/service"

var orders service.OrderService

func Routes() []string {
	return []string{orders.Name()}
}
`,
		"service/order.go": `package service

import (
	"fmt"

	"example.com/shop/web"
)

type OrderService struct {
	ctrl *web.OrderController
}

func (s OrderService) Name() string {
	return fmt.Sprint("orders")
}
`,
		"repository/user.go": `package repository

import "example.com/shop/domain"

type UserRepository struct {
	users []domain.User
}

func (r *UserRepository) Count() int { return len(r.users) }
`,
		"domain/user.go": `package domain

type User struct {
	Name string
}
`,
		"service/order_test.go": `package service

import (
	"testing"

	"example.com/shop/web"
)

func TestOrders(t *testing.T) {
	_ = web.NewOrderController()
}
`,
		"testdata/fixture/web.go": `package fixture

import "example.com/shop/web"

var _ = web.Routes
`,
	}
}

// ShopModule writes ShopFiles as module example.com/shop and returns its dir.
func ShopModule(t testing.TB) string {
	t.Helper()
	return WriteModule(t, ShopModulePath, ShopFiles())
}

package services

import (
	"context"
	"testing"
	"time"

	"logistics-api/auth"
	"logistics-api/events"
	"logistics-api/models"
	"logistics-api/store"

	"go.uber.org/zap"
)

type fixture struct {
	store      *store.Store
	orders     *OrderService
	users      *UserService
	warehouses *WarehouseService
	deliveries *DeliveryService

	admin, driver, otherDriver, customer, otherCustomer models.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	st := store.New(db)
	log := zap.NewNop()
	f := &fixture{store: st}
	f.orders = NewOrderService(st, events.NewLogPublisher(log), nil, log, 3)
	f.users = NewUserService(st, auth.NewTokenIssuer("test-secret", time.Hour, "test"))
	f.warehouses = NewWarehouseService(st)
	f.deliveries = NewDeliveryService(st, f.orders)

	f.admin = f.addUser(t, "admin", models.RoleAdmin)
	f.driver = f.addUser(t, "driver", models.RoleDriver)
	f.otherDriver = f.addUser(t, "driver2", models.RoleDriver)
	f.customer = f.addUser(t, "customer", models.RoleCustomer)
	f.otherCustomer = f.addUser(t, "customer2", models.RoleCustomer)
	return f
}

func (f *fixture) addUser(t *testing.T, username string, role models.Role) models.Caller {
	t.Helper()
	u := &models.User{Username: username, Password: "unused", Role: role}
	if err := f.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return models.Caller{ID: u.ID, Username: u.Username, Role: u.Role}
}

func sampleInput() OrderInput {
	return OrderInput{
		Sender: Contact{
			Name: "Zhang San", Phone: "13800000001",
			Province: "Zhejiang", City: "Hangzhou", District: "Xihu", Address: "1 Lake Rd",
		},
		Receiver: Contact{
			Name: "Li Si", Phone: "13900000002",
			Province: "Shanghai", City: "Shanghai", District: "Pudong", Address: "8 Century Ave",
		},
		GoodsType:     "fragile",
		GoodsQuantity: 2,
	}
}

func (f *fixture) createOrder(t *testing.T, caller models.Caller) *models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), caller, sampleInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func (f *fixture) transition(t *testing.T, id uint, to models.OrderStatus, driverID uint) {
	t.Helper()
	in := StatusInput{Status: to}
	if driverID != 0 {
		in.DriverID = &driverID
	}
	if _, err := f.orders.UpdateStatus(context.Background(), f.admin, id, in); err != nil {
		t.Fatalf("transition %d -> %s: %v", id, to, err)
	}
}

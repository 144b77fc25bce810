package services

import (
	"context"
	"errors"
	"testing"

	"logistics-api/apperr"
	"logistics-api/models"
)

func TestDeliveryTaskFollowsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, f.customer)
	f.transition(t, order.ID, models.StatusDelivering, f.driver.ID)

	tasks, err := f.deliveries.MyTasks(ctx, f.driver, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].OrderID != order.ID || tasks[0].TaskStatus != models.TaskDelivering {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	if tasks[0].AssignUserID != f.admin.ID {
		t.Errorf("assign user = %d, want %d", tasks[0].AssignUserID, f.admin.ID)
	}
	task := tasks[0]

	if _, err := f.deliveries.AddTrack(ctx, f.otherDriver, task.ID, TrackInput{Node: "picked up"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign driver: expected not found, got %v", err)
	}
	if _, err := f.deliveries.AddTrack(ctx, f.driver, task.ID, TrackInput{Node: "picked up", Address: "Hangzhou hub"}); err != nil {
		t.Fatalf("add track: %v", err)
	}

	f.transition(t, order.ID, models.StatusSigned, 0)

	done, err := f.deliveries.MyTasks(ctx, f.driver, models.TaskCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0].CompleteTime == nil {
		t.Fatalf("task not completed: %+v", done)
	}
	if _, err := f.deliveries.AddTrack(ctx, f.driver, task.ID, TrackInput{Node: "late"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("closed task: expected validation error, got %v", err)
	}

	tracks, err := f.deliveries.Tracks(ctx, f.customer, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].TrackNode != "picked up" {
		t.Fatalf("unexpected tracks %+v", tracks)
	}
	if _, err := f.deliveries.Tracks(ctx, f.otherCustomer, order.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("other customer: expected not found, got %v", err)
	}
}

func TestCancelClosesTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, f.customer)
	f.transition(t, order.ID, models.StatusDelivering, f.driver.ID)
	f.transition(t, order.ID, models.StatusCancelled, 0)

	open, err := f.deliveries.MyTasks(ctx, f.driver, models.TaskDelivering)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Fatalf("%d tasks still open", len(open))
	}
	cancelled, _ := f.deliveries.MyTasks(ctx, f.driver, models.TaskCancelled)
	if len(cancelled) != 1 {
		t.Fatalf("expected one cancelled task, got %d", len(cancelled))
	}
}

func TestMyTasksDriversOnly(t *testing.T) {
	f := newFixture(t)
	for _, c := range []models.Caller{f.admin, f.customer} {
		if _, err := f.deliveries.MyTasks(context.Background(), c, ""); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("%s: expected forbidden, got %v", c.Username, err)
		}
	}
}

func TestDriverStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.deliveries.MyStats(ctx, f.driver)
	if err != nil {
		t.Fatal(err)
	}
	if empty.TaskCount != 0 || empty.Efficiency != 0 {
		t.Fatalf("fresh driver stats %+v", empty)
	}

	ids := make([]uint, 4)
	for i := range ids {
		ids[i] = f.createOrder(t, f.customer).ID
		f.transition(t, ids[i], models.StatusDelivering, f.driver.ID)
	}
	f.transition(t, ids[0], models.StatusSigned, 0)
	f.transition(t, ids[1], models.StatusSigned, 0)
	f.transition(t, ids[2], models.StatusCancelled, 0)
	other := f.createOrder(t, f.customer)
	f.transition(t, other.ID, models.StatusDelivering, f.otherDriver.ID)

	st, err := f.deliveries.MyStats(ctx, f.driver)
	if err != nil {
		t.Fatal(err)
	}
	if st.TaskCount != 4 || st.Completed != 2 || st.Cancelled != 1 || st.Delivering != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if want := 2.0 / 3.0; st.Efficiency != want {
		t.Errorf("efficiency = %v, want %v", st.Efficiency, want)
	}

	for _, c := range []models.Caller{f.admin, f.customer} {
		if _, err := f.deliveries.MyStats(ctx, c); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("%s: expected forbidden, got %v", c.Username, err)
		}
	}
}

package main

import (
	"context"

	"github.com/google/uuid"

	"registrar/internal/offering"
	"registrar/internal/student"
	id "registrar/pkg/domain"
)

// Fixed ids keep demo requests copy-pasteable across restarts.
var (
	demoOfferings = []struct {
		id         string
		code       string
		semester   string
		credits    int
		capacity   int
		instructor string
	}{
		{"6f1c2a3e-0b7d-4e58-9a61-1d2f3c4b5a60", "CS101", "2026-FALL", 4, 30, "Dr. Ada Byron"},
		{"8a9b0c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d", "MATH201", "2026-FALL", 3, 2, "Dr. Emmy Noether"},
	}
	demoStudents = []struct {
		id   string
		name string
	}{
		{"1b2c3d4e-5f60-4718-8293-a4b5c6d7e8f9", "Grace Hopper"},
		{"2c3d4e5f-6071-4829-93a4-b5c6d7e8f9a0", "Alan Turing"},
		{"3d4e5f60-7182-493a-a4b5-c6d7e8f9a0b1", "Katherine Johnson"},
	}
)

type offeringWriter interface {
	Put(ctx context.Context, o *offering.Offering) error
}

func seedDemo(ctx context.Context, offerings offeringWriter, students *student.InMemory) error {
	for _, d := range demoOfferings {
		o, err := offering.NewOffering(id.OfferingID(uuid.MustParse(d.id)), d.code, d.semester, d.credits, d.capacity, d.instructor)
		if err != nil {
			return err
		}
		if err := offerings.Put(ctx, o); err != nil {
			return err
		}
	}
	for _, d := range demoStudents {
		students.Add(id.StudentID(uuid.MustParse(d.id)), d.name)
	}
	return nil
}

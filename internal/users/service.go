package users

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/eion/usersvc/internal/users"

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store      UserStore
	tracer     trace.Tracer
	operations metric.Int64Counter
}

// NewUserService creates a new user service instance using the global
// OpenTelemetry providers
func NewUserService(store UserStore) *UserServiceImpl {
	operations, err := otel.Meter(instrumentationName).Int64Counter(
		"users.operations",
		metric.WithDescription("Number of user operations by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &UserServiceImpl{
		store:      store,
		tracer:     otel.Tracer(instrumentationName),
		operations: operations,
	}
}

// CreateUser validates and stores a new user
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (user *User, err error) {
	ctx, span := s.start(ctx, OpCreate)
	defer func() { s.finish(ctx, span, OpCreate, err) }()

	if err := validateName(OpCreate, req.Name); err != nil {
		return nil, err
	}
	if err := validateAge(OpCreate, req.Age); err != nil {
		return nil, err
	}

	return s.store.CreateUser(ctx, req)
}

// ListUsers returns all users
func (s *UserServiceImpl) ListUsers(ctx context.Context) (users []User, err error) {
	ctx, span := s.start(ctx, OpList)
	defer func() { s.finish(ctx, span, OpList, err) }()

	users, err = s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

// UpdateUser validates and overwrites an existing user
func (s *UserServiceImpl) UpdateUser(ctx context.Context, req *UpdateUserRequest) (err error) {
	ctx, span := s.start(ctx, OpUpdate)
	defer func() { s.finish(ctx, span, OpUpdate, err) }()

	if err := validateID(OpUpdate, req.ID); err != nil {
		return err
	}
	if err := validateName(OpUpdate, req.Name); err != nil {
		return err
	}
	if err := validateAge(OpUpdate, req.Age); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("users.id", req.ID))
	return s.store.UpdateUser(ctx, req)
}

// DeleteUser deletes a user
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.start(ctx, OpDelete)
	defer func() { s.finish(ctx, span, OpDelete, err) }()

	if err := validateID(OpDelete, id); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("users.id", id))
	return s.store.DeleteUser(ctx, id)
}

func (s *UserServiceImpl) start(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "users."+string(op),
		trace.WithAttributes(attribute.String("users.operation", string(op))))
}

func (s *UserServiceImpl) finish(ctx context.Context, span trace.Span, op Operation, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if s.operations != nil {
		s.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", string(op)),
			attribute.String("outcome", outcome),
		))
	}
}

func validateID(op Operation, id int64) error {
	if id <= 0 {
		return NewInvalidArgumentError(op, "id", "invalid user id")
	}
	return nil
}

func validateName(op Operation, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewInvalidArgumentError(op, "name", "name cannot be empty")
	}
	return nil
}

func validateAge(op Operation, age int) error {
	if age < MinAge || age > MaxAge {
		return NewInvalidArgumentError(op, "age", "age must be between 0 and 150")
	}
	return nil
}

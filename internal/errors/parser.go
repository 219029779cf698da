package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ParseError 저장소 에러를 분류하여 AppError로 변환
// context는 "cart item", "order" 처럼 대상 리소스를 나타냄
// 이미 AppError인 경우 그대로 반환
func ParseError(err error, context string) *AppError {
	if err == nil {
		return Internal(nil, "unexpected error")
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: notFoundMessage(context), Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &AppError{Kind: KindConflict, Code: ResourceAlreadyExists, Message: conflictMessage(context), Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: "referenced resource not found", Err: err}
	}

	// 2. PostgreSQL 에러 코드
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &AppError{Kind: KindConflict, Code: ResourceAlreadyExists, Message: conflictMessage(context), Err: err}
		case pgForeignKeyViolation:
			return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: "referenced resource not found", Err: err}
		case pgNotNullViolation:
			return &AppError{Kind: KindValidation, Code: ValidationRequired, Message: "a required field is missing", Err: err}
		case pgCheckViolation:
			return &AppError{Kind: KindValidation, Code: ValidationInvalidRange, Message: "a value is out of range", Err: err}
		}
	}

	// 3. 드라이버가 코드를 주지 않는 경우 (sqlite 등) 메시지로 판별
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint"):
		return &AppError{Kind: KindConflict, Code: ResourceAlreadyExists, Message: conflictMessage(context), Err: err}
	case strings.Contains(lower, "foreign key constraint"):
		return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: "referenced resource not found", Err: err}
	case strings.Contains(lower, "not null constraint") || strings.Contains(lower, "violates not-null constraint"):
		return &AppError{Kind: KindValidation, Code: ValidationRequired, Message: "a required field is missing", Err: err}
	}

	// 4. 기본 내부 서버 오류
	return &AppError{Kind: KindInternal, Code: InternalDatabaseError, Message: defaultMessage(context), Err: err}
}

func notFoundMessage(context string) string {
	if context == "" {
		return "requested resource not found"
	}
	return context + " not found"
}

func conflictMessage(context string) string {
	if context == "" {
		return "resource already exists"
	}
	return context + " already exists"
}

func defaultMessage(context string) string {
	if context == "" {
		return "internal server error, please try again later"
	}
	return "failed to process " + context + ", please try again later"
}

package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 로그인 필요
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"    // 잘못된 입력 (body)
	ValidationInvalidQuery    = "VALIDATION_INVALID_QUERY"    // 잘못된 조회 조건
	ValidationInvalidID       = "VALIDATION_INVALID_ID"       // 잘못된 ID
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY" // 잘못된 수량
	ValidationInvalidRange    = "VALIDATION_INVALID_RANGE"    // 범위 초과
	ValidationRequired        = "VALIDATION_REQUIRED"         // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 카탈로그 (PRODUCT_) ====================
	ProductNotFound        = "PRODUCT_NOT_FOUND"         // 상품 없음
	ProductVariantNotFound = "PRODUCT_VARIANT_NOT_FOUND" // 상품 옵션 없음
	StockInsufficient      = "STOCK_INSUFFICIENT"        // 재고 부족

	// ==================== 장바구니 (CART_) ====================
	CartEmpty        = "CART_EMPTY"          // 빈 장바구니로 주문 불가
	CartItemNotFound = "CART_ITEM_NOT_FOUND" // 장바구니 항목 없음

	// ==================== 주문 (ORDER_) ====================
	OrderNotFound = "ORDER_NOT_FOUND" // 주문 없음

	// ==================== 요청 제한 ====================
	RateLimited = "RATE_LIMITED" // 요청 과다

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
)

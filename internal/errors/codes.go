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
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND" // 리소스 없음

	// ==================== 상품 (PRODUCT_) ====================
	ProductNotFound      = "PRODUCT_NOT_FOUND"      // 상품 없음
	ProductSizeRequired  = "PRODUCT_SIZE_REQUIRED"  // 사이즈 선택 필요
	ProductColorRequired = "PRODUCT_COLOR_REQUIRED" // 색상 선택 필요
	ProductInvalidOption = "PRODUCT_INVALID_OPTION" // 없는 사이즈/색상

	// ==================== 장바구니/위시리스트 (CART_, WISHLIST_) ====================
	CartItemNotFound  = "CART_ITEM_NOT_FOUND"  // 장바구니 항목 없음
	WishlistNotInList = "WISHLIST_NOT_IN_LIST" // 위시리스트에 없음

	// ==================== 결제 (CHECKOUT_) ====================
	CheckoutCartEmpty          = "CHECKOUT_CART_EMPTY"           // 빈 장바구니
	CheckoutInvalidStep        = "CHECKOUT_INVALID_STEP"         // 잘못된 단계 전환
	CheckoutShippingIncomplete = "CHECKOUT_SHIPPING_INCOMPLETE"  // 배송지 정보 부족
	CheckoutPaymentUnavailable = "CHECKOUT_PAYMENT_UNAVAILABLE"  // 선택 불가 결제수단
	CheckoutInFlight           = "CHECKOUT_SUBMISSION_IN_FLIGHT" // 주문 처리 중
	CheckoutOrderFailed        = "CHECKOUT_ORDER_FAILED"         // 주문 실패

	// ==================== 주소/주문 (ADDRESS_, ORDER_) ====================
	AddressNotFound       = "ADDRESS_NOT_FOUND"       // 주소 없음
	AddressAlreadyDefault = "ADDRESS_ALREADY_DEFAULT" // 이미 기본 배송지
	OrderNotFound         = "ORDER_NOT_FOUND"         // 주문 없음

	// ==================== 외부 API (UPSTREAM_) ====================
	UpstreamUnavailable = "UPSTREAM_UNAVAILABLE" // 상점 API 장애
	UpstreamRejected    = "UPSTREAM_REJECTED"    // 상점 API 거절

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
)

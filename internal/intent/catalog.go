package intent

// ParamType is the JSON type of a function parameter
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeInteger     ParamType = "integer"
	TypeBoolean     ParamType = "boolean"
	TypeStringArray ParamType = "array"
)

// Param describes one argument of a catalog function
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Enum        []string
	// ContextResolvable marks identifiers the handler can recover from the
	// session context, so their absence is not an argument error.
	ContextResolvable bool
}

// Function is a business operation the language model may call
type Function struct {
	Name        string
	Description string
	Params      []Param
	Required    []string
}

// Param looks up a parameter by name
func (f Function) Param(name string) (Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Function names
const (
	FnSearchProducts                 = "search_products"
	FnGetProductDetails              = "get_product_details"
	FnBrowseCategories               = "browse_categories"
	FnGetProductsByCategory          = "get_products_by_category"
	FnAddToCart                      = "add_to_cart"
	FnViewCart                       = "view_cart"
	FnRemoveFromCart                 = "remove_from_cart"
	FnUpdateCartItem                 = "update_cart_item"
	FnGetUserOrders                  = "get_user_orders"
	FnGetOrderDetails                = "get_order_details"
	FnCheckOrderStatus               = "check_order_status"
	FnCancelOrder                    = "cancel_order"
	FnCreateOrderFromCart            = "create_order_from_cart"
	FnUpdateShippingAddress          = "update_shipping_address"
	FnReorderPastPurchase            = "reorder_past_purchase"
	FnCreatePaymentLink              = "create_payment_link"
	FnCheckPaymentStatus             = "check_payment_status"
	FnValidateVoucher                = "validate_voucher"
	FnGetBestVoucher                 = "get_best_voucher"
	FnGetUserVouchers                = "get_user_vouchers"
	FnApplyVoucherToCart             = "apply_voucher_to_cart"
	FnGetUserProfile                 = "get_user_profile"
	FnGetUserAddresses               = "get_user_addresses"
	FnAddDeliveryAddress             = "add_delivery_address"
	FnGetFlashSaleProducts           = "get_flash_sale_products"
	FnRecommendProducts              = "recommend_products"
	FnGetSimilarProducts             = "get_similar_products"
	FnGetBestsellingProducts         = "get_bestselling_products"
	FnGetTrendingProducts            = "get_trending_products"
	FnGetNewArrivals                 = "get_new_arrivals"
	FnGetHotTrendingProducts         = "get_hot_trending_products"
	FnCreateProductReview            = "create_product_review"
	FnGetProductReviews              = "get_product_reviews"
	FnCompareProducts                = "compare_products"
	FnFilterProductsByPrice          = "filter_products_by_price"
	FnGetProductsByRating            = "get_products_by_rating"
	FnFilterProductsByAttributes     = "filter_products_by_attributes"
	FnCheckStockAvailability         = "check_stock_availability"
	FnCalculateShippingFee           = "calculate_shipping_fee"
	FnGetLowStockProducts            = "get_low_stock_products"
	FnGetUserPurchaseHistory         = "get_user_purchase_history"
	FnGetPersonalizedRecommendations = "get_personalized_recommendations"
	FnTrackUserBehavior              = "track_user_behavior"
	FnGetUserPreferences             = "get_user_preferences"
	FnGetRecentPurchases             = "get_recent_purchases"
	FnGetFlashDeals                  = "get_flash_deals"
	FnGetLimitedTimeOffers           = "get_limited_time_offers"
	FnGetTrendingNow                 = "get_trending_now"
	FnGeneratePersonalizedDiscount   = "generate_personalized_discount"
	FnCalculateBundleSavings         = "calculate_bundle_savings"
	FnGetAbandonedCart               = "get_abandoned_cart"
	FnSendCartRecoveryIncentive      = "send_cart_recovery_incentive"
	FnGetUpgradeSuggestions          = "get_upgrade_suggestions"
	FnGetFrequentlyBoughtTogether    = "get_frequently_bought_together"
)

var (
	pLimit     = Param{Name: "limit", Type: TypeInteger, Description: "Maximum number of results"}
	pCategory  = Param{Name: "category", Type: TypeString, Description: "Category name or slug (optional)"}
	pProductID = Param{Name: "productId", Type: TypeString, Description: "Product ID", ContextResolvable: true}
	pOrderID   = Param{Name: "orderId", Type: TypeString, Description: "Order ID", ContextResolvable: true}
	pIDs       = Param{Name: "productIds", Type: TypeStringArray, Description: "List of product IDs"}
)

var catalog = []Function{
	// Product search & discovery
	{
		Name:        FnSearchProducts,
		Description: "Search products by keyword, optionally filtered by category and price range",
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "Search keyword"},
			pCategory,
			{Name: "minPrice", Type: TypeNumber, Description: "Minimum price in VND"},
			{Name: "maxPrice", Type: TypeNumber, Description: "Maximum price in VND"},
			pLimit,
		},
	},
	{
		Name:        FnGetProductDetails,
		Description: "Get full details of a product. When the shopper says 'this one' or 'that product', use the product shown most recently in the conversation",
		Params: []Param{
			pProductID,
			{Name: "slug", Type: TypeString, Description: "Product slug, when the ID is unknown"},
		},
		Required: []string{"productId"},
	},
	{
		Name:        FnBrowseCategories,
		Description: "List the product categories of the shop",
	},
	{
		Name:        FnGetProductsByCategory,
		Description: "List products in a category",
		Params: []Param{
			{Name: "category", Type: TypeString, Description: "Category name or slug"},
			pLimit,
		},
		Required: []string{"category"},
	},

	// Cart
	{
		Name:        FnAddToCart,
		Description: "Add a product to the shopping cart. If the shopper refers to 'this product', 'that one' or similar, use the productId of the product just shown in the conversation",
		Params: []Param{
			{Name: "productId", Type: TypeString, Description: "ID of the product to add", ContextResolvable: true},
			{Name: "quantity", Type: TypeInteger, Description: "Quantity, defaults to 1"},
			{Name: "variantId", Type: TypeString, Description: "Variant ID (size/color), if any"},
		},
		Required: []string{"productId"},
	},
	{
		Name:        FnViewCart,
		Description: "Show the current shopping cart",
	},
	{
		Name:        FnRemoveFromCart,
		Description: "Remove a product from the shopping cart",
		Params: []Param{
			{Name: "productId", Type: TypeString, Description: "ID of the product or cart item to remove", ContextResolvable: true},
		},
		Required: []string{"productId"},
	},
	{
		Name:        FnUpdateCartItem,
		Description: "Change the quantity of a product in the cart",
		Params: []Param{
			{Name: "productId", Type: TypeString, Description: "ID of the product or cart item", ContextResolvable: true},
			{Name: "quantity", Type: TypeInteger, Description: "New quantity"},
		},
		Required: []string{"productId", "quantity"},
	},

	// Orders
	{
		Name:        FnGetUserOrders,
		Description: "List the shopper's orders, newest first",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnGetOrderDetails,
		Description: "Show order details with a status timeline and suggested next actions",
		Params:      []Param{pOrderID},
		Required:    []string{"orderId"},
	},
	{
		Name:        FnCheckOrderStatus,
		Description: "Check the status of an order",
		Params:      []Param{pOrderID},
		Required:    []string{"orderId"},
	},
	{
		Name:        FnCancelOrder,
		Description: "Cancel an order that has not shipped yet",
		Params: []Param{
			{Name: "orderId", Type: TypeString, Description: "ID of the order to cancel", ContextResolvable: true},
			{Name: "reason", Type: TypeString, Description: "Cancellation reason"},
		},
		Required: []string{"orderId"},
	},
	{
		Name:        FnCreateOrderFromCart,
		Description: "Place an order with the items in the cart",
		Params: []Param{
			{Name: "addressId", Type: TypeString, Description: "Saved delivery address ID, defaults to the default address"},
			{Name: "paymentMethod", Type: TypeString, Description: "Payment method", Enum: []string{"cod", "vnpay"}},
			{Name: "voucherCode", Type: TypeString, Description: "Voucher code to apply"},
			{Name: "note", Type: TypeString, Description: "Note for the courier"},
		},
	},
	{
		Name:        FnUpdateShippingAddress,
		Description: "Change the delivery address of an order that has not shipped yet",
		Params: []Param{
			pOrderID,
			{Name: "addressId", Type: TypeString, Description: "Saved delivery address ID to use"},
		},
		Required: []string{"orderId", "addressId"},
	},
	{
		Name:        FnReorderPastPurchase,
		Description: "Put the items of a previous order back into the cart",
		Params:      []Param{pOrderID},
		Required:    []string{"orderId"},
	},

	// Payment
	{
		Name:        FnCreatePaymentLink,
		Description: "Create an online payment link for an order",
		Params:      []Param{pOrderID},
		Required:    []string{"orderId"},
	},
	{
		Name:        FnCheckPaymentStatus,
		Description: "Check the payment status of an order",
		Params:      []Param{pOrderID},
		Required:    []string{"orderId"},
	},

	// Vouchers
	{
		Name:        FnValidateVoucher,
		Description: "Check whether a voucher code is valid for the current cart",
		Params: []Param{
			{Name: "voucherCode", Type: TypeString, Description: "Voucher code"},
			{Name: "orderTotal", Type: TypeNumber, Description: "Order total in VND, defaults to the cart total"},
		},
		Required: []string{"voucherCode"},
	},
	{
		Name:        FnGetBestVoucher,
		Description: "Find the voucher giving the biggest discount for the current cart",
	},
	{
		Name:        FnGetUserVouchers,
		Description: "List vouchers the shopper can use",
	},
	{
		Name:        FnApplyVoucherToCart,
		Description: "Apply a voucher to the cart and show the discounted total",
		Params: []Param{
			{Name: "voucherCode", Type: TypeString, Description: "Voucher code"},
		},
		Required: []string{"voucherCode"},
	},

	// Profile & addresses
	{
		Name:        FnGetUserProfile,
		Description: "Show the shopper's profile",
	},
	{
		Name:        FnGetUserAddresses,
		Description: "List saved delivery addresses",
	},
	{
		Name:        FnAddDeliveryAddress,
		Description: "Save a new delivery address",
		Params: []Param{
			{Name: "name", Type: TypeString, Description: "Recipient name"},
			{Name: "phone", Type: TypeString, Description: "Phone number"},
			{Name: "address", Type: TypeString, Description: "Street address"},
			{Name: "province", Type: TypeString, Description: "Province or city"},
			{Name: "district", Type: TypeString, Description: "District"},
			{Name: "ward", Type: TypeString, Description: "Ward"},
			{Name: "isDefault", Type: TypeBoolean, Description: "Make this the default address"},
		},
		Required: []string{"name", "phone", "address"},
	},

	// Recommendations
	{
		Name:        FnGetFlashSaleProducts,
		Description: "List products currently on sale",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnRecommendProducts,
		Description: "Recommend products, optionally around a keyword",
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "What the shopper is interested in"},
			pLimit,
		},
	},
	{
		Name:        FnGetSimilarProducts,
		Description: "List products similar to a given product",
		Params:      []Param{pProductID, pLimit},
		Required:    []string{"productId"},
	},
	{
		Name:        FnGetBestsellingProducts,
		Description: "List best-selling products",
		Params:      []Param{pCategory, pLimit},
	},
	{
		Name:        FnGetTrendingProducts,
		Description: "List trending products",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnGetNewArrivals,
		Description: "List products added recently",
		Params: []Param{
			pCategory,
			{Name: "days", Type: TypeInteger, Description: "Look-back window in days, defaults to 30"},
			pLimit,
		},
	},
	{
		Name:        FnGetHotTrendingProducts,
		Description: "List the hottest products ranked by views, sales and rating",
		Params: []Param{
			pCategory,
			{Name: "timeFrame", Type: TypeString, Description: "Time frame", Enum: []string{"day", "week", "month"}},
			pLimit,
		},
	},

	// Reviews
	{
		Name:        FnCreateProductReview,
		Description: "Write a review for a purchased product",
		Params: []Param{
			pProductID,
			{Name: "rating", Type: TypeInteger, Description: "Rating from 1 to 5"},
			{Name: "comment", Type: TypeString, Description: "Review text"},
		},
		Required: []string{"productId", "rating"},
	},
	{
		Name:        FnGetProductReviews,
		Description: "Show reviews of a product",
		Params:      []Param{pProductID, pLimit},
		Required:    []string{"productId"},
	},

	// Comparison & filtering
	{
		Name:        FnCompareProducts,
		Description: "Compare two or more products side by side",
		Params:      []Param{pIDs},
		Required:    []string{"productIds"},
	},
	{
		Name:        FnFilterProductsByPrice,
		Description: "Filter products by price range, or list the cheapest or most expensive ones",
		Params: []Param{
			{Name: "minPrice", Type: TypeNumber, Description: "Minimum price in VND"},
			{Name: "maxPrice", Type: TypeNumber, Description: "Maximum price in VND"},
			pCategory,
			{Name: "sortBy", Type: TypeString, Description: "Sort by price: highest or lowest first", Enum: []string{"highest", "lowest"}},
			pLimit,
		},
	},
	{
		Name:        FnGetProductsByRating,
		Description: "List products with at least a given average rating",
		Params: []Param{
			{Name: "minRating", Type: TypeNumber, Description: "Minimum average rating (1-5), defaults to 4"},
			pCategory,
			pLimit,
		},
	},
	{
		Name:        FnFilterProductsByAttributes,
		Description: "Filter products by size, color or brand",
		Params: []Param{
			pCategory,
			{Name: "size", Type: TypeString, Description: "Size"},
			{Name: "color", Type: TypeString, Description: "Color"},
			{Name: "brand", Type: TypeString, Description: "Brand"},
			pLimit,
		},
	},

	// Stock & shipping
	{
		Name:        FnCheckStockAvailability,
		Description: "Check whether a product or variant is in stock",
		Params: []Param{
			pProductID,
			{Name: "variantId", Type: TypeString, Description: "Variant ID, if any"},
		},
		Required: []string{"productId"},
	},
	{
		Name:        FnCalculateShippingFee,
		Description: "Estimate the delivery fee to a city or saved address",
		Params: []Param{
			{Name: "addressId", Type: TypeString, Description: "Saved delivery address ID"},
			{Name: "city", Type: TypeString, Description: "Destination city"},
		},
	},
	{
		Name:        FnGetLowStockProducts,
		Description: "Show stock urgency for a product, or list products that are almost sold out",
		Params: []Param{
			{Name: "productId", Type: TypeString, Description: "Product ID (optional)"},
			pLimit,
		},
	},

	// Personalization
	{
		Name:        FnGetUserPurchaseHistory,
		Description: "Summarize the shopper's purchase history",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnGetPersonalizedRecommendations,
		Description: "Recommend products based on the shopper's purchase history",
		Params: []Param{
			{Name: "context", Type: TypeString, Description: "Where the recommendation is shown, e.g. general or cart"},
			pLimit,
		},
	},
	{
		Name:        FnTrackUserBehavior,
		Description: "Record a shopper action such as viewing or clicking a product",
		Params: []Param{
			{Name: "action", Type: TypeString, Description: "Action type (view/click/add_to_cart)"},
			{Name: "productId", Type: TypeString, Description: "Product ID, if any"},
		},
		Required: []string{"action"},
	},
	{
		Name:        FnGetUserPreferences,
		Description: "Infer the shopper's preferred brands, price range and interests",
	},
	{
		Name:        FnGetRecentPurchases,
		Description: "Show recent purchases by other shoppers, optionally for one product",
		Params: []Param{
			{Name: "productId", Type: TypeString, Description: "Product ID (optional)"},
			pLimit,
		},
	},

	// Urgency & promotions
	{
		Name:        FnGetFlashDeals,
		Description: "List flash deals running right now",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnGetLimitedTimeOffers,
		Description: "List limited-time voucher offers",
		Params:      []Param{pLimit},
	},
	{
		Name:        FnGetTrendingNow,
		Description: "List products trending right now",
		Params: []Param{
			{Name: "timeframe", Type: TypeString, Description: "Time frame label, e.g. today"},
			pLimit,
		},
	},
	{
		Name:        FnGeneratePersonalizedDiscount,
		Description: "Generate a personalized discount for the shopper",
		Params: []Param{
			{Name: "trigger", Type: TypeString, Description: "Why the discount is offered", Enum: []string{"first_purchase", "cart_abandonment", "vip", "loyalty", "general"}},
			{Name: "minOrderValue", Type: TypeNumber, Description: "Minimum order value in VND"},
		},
	},
	{
		Name:        FnCalculateBundleSavings,
		Description: "Calculate how much the shopper saves buying several products together",
		Params:      []Param{pIDs},
		Required:    []string{"productIds"},
	},
	{
		Name:        FnGetAbandonedCart,
		Description: "Show items left in the cart without checking out",
	},
	{
		Name:        FnSendCartRecoveryIncentive,
		Description: "Offer an incentive to complete checkout of the current cart",
		Params: []Param{
			{Name: "incentiveType", Type: TypeString, Description: "Kind of incentive", Enum: []string{"free_shipping", "discount", "gift", "reminder"}},
		},
	},
	{
		Name:        FnGetUpgradeSuggestions,
		Description: "Suggest higher-end alternatives to a product",
		Params: []Param{
			{Name: "currentProductId", Type: TypeString, Description: "ID of the product to upgrade from", ContextResolvable: true},
		},
		Required: []string{"currentProductId"},
	},
	{
		Name:        FnGetFrequentlyBoughtTogether,
		Description: "Suggest products frequently bought together with the given ones",
		Params:      []Param{pIDs},
		Required:    []string{"productIds"},
	},
}

var catalogIndex = func() map[string]Function {
	idx := make(map[string]Function, len(catalog))
	for _, f := range catalog {
		idx[f.Name] = f
	}
	return idx
}()

// Catalog returns the static list of callable functions
func Catalog() []Function {
	out := make([]Function, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog function by name
func Lookup(name string) (Function, bool) {
	f, ok := catalogIndex[name]
	return f, ok
}

// Names lists catalog function names in declaration order
func Names() []string {
	names := make([]string, len(catalog))
	for i, f := range catalog {
		names[i] = f.Name
	}
	return names
}

package storefront

// Shopper-facing notification texts.
const (
	msgLoadFailed = "Không thể tải giỏ hàng. Vui lòng thử lại!"

	msgIncreaseOK     = "Tăng số lượng %s thành công!"
	msgIncreaseFailed = "Không thể tăng số lượng. Vui lòng thử lại!"
	msgDecreaseOK     = "Giảm số lượng %s thành công!"
	msgDecreaseFailed = "Không thể giảm số lượng. Vui lòng thử lại!"

	msgDeleteItemOK     = "Đã xóa sản phẩm %s!"
	msgDeleteItemFailed = "Không thể xóa sản phẩm. Vui lòng thử lại!"
	msgDeleteAddonOK    = "Đã xóa phụ kiện %s!"
	msgDeleteAddonFail  = "Không thể xóa phụ kiện. Vui lòng thử lại!"
	msgDeleteStoreOK    = "Đã xóa tất cả sản phẩm của %s!"
	msgDeleteStoreFail  = "Không thể xóa tất cả sản phẩm. Vui lòng thử lại!"

	msgVariantIncomplete = "Vui lòng chọn đầy đủ các thuộc tính hoặc tổ hợp không hợp lệ!"
	msgVariantUnchanged  = "Bạn chưa thay đổi phân loại nào!"
	msgVariantDuplicate  = "Biến thể này đã có trong giỏ hàng. Vui lòng chọn biến thể khác!"
	msgVariantOK         = "Đã thay đổi phân loại %s thành công!"
	msgVariantFailed     = "Không thể thay đổi phân loại. Vui lòng thử lại!"
)

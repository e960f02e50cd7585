// internal/protocol/serial/vendors.go
package serial

import "strings"

// VendorDatabase maps USB vendor and product IDs of common DMX interface
// chipsets to readable names
type VendorDatabase struct {
	vendors map[string]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Name     string
	products map[string]*ProductInfo
}

// ProductInfo contains product-specific information
type ProductInfo struct {
	Name string
}

// NewVendorDatabase creates and populates the vendor table
func NewVendorDatabase() *VendorDatabase {
	db := &VendorDatabase{
		vendors: make(map[string]*VendorInfo),
	}
	db.initializeDatabase()
	return db
}

func (db *VendorDatabase) initializeDatabase() {
	// FTDI is behind most USB DMX dongles (Enttec Open DMX / DMX USB Pro, DMXking)
	db.AddVendor("0403", "FTDI")
	db.AddProduct("0403", "6001", "FT232R USB UART")
	db.AddProduct("0403", "6010", "FT2232 Dual UART")
	db.AddProduct("0403", "6014", "FT232H Single HS UART")
	db.AddProduct("0403", "6015", "FT-X Series UART")

	db.AddVendor("10CF", "Velleman")
	db.AddProduct("10CF", "8062", "K8062 DMX Interface")

	db.AddVendor("16C0", "Van Ooijen Technische Informatica")
	db.AddProduct("16C0", "05DC", "uDMX")

	db.AddVendor("10C4", "Silicon Labs")
	db.AddProduct("10C4", "EA60", "CP210x UART Bridge")

	db.AddVendor("1A86", "QinHeng Electronics")
	db.AddProduct("1A86", "7523", "CH340 Serial Converter")

	db.AddVendor("067B", "Prolific Technology")
	db.AddProduct("067B", "2303", "PL2303 Serial Port")
}

// AddVendor registers a vendor ID
func (db *VendorDatabase) AddVendor(vendorID, name string) {
	db.vendors[normalizeID(vendorID)] = &VendorInfo{
		Name:     name,
		products: make(map[string]*ProductInfo),
	}
}

// AddProduct registers a product under an existing vendor
func (db *VendorDatabase) AddProduct(vendorID, productID, name string) {
	vendor, ok := db.vendors[normalizeID(vendorID)]
	if !ok {
		return
	}
	vendor.products[normalizeID(productID)] = &ProductInfo{Name: name}
}

// GetVendorInfo returns the vendor for vendorID, or nil
func (db *VendorDatabase) GetVendorInfo(vendorID string) *VendorInfo {
	return db.vendors[normalizeID(vendorID)]
}

// GetProductInfo returns the product for productID, or nil
func (vi *VendorInfo) GetProductInfo(productID string) *ProductInfo {
	return vi.products[normalizeID(productID)]
}

// enumerator reports IDs lowercase on Linux and uppercase on Windows
func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.ToLower(id), "0x"))
}

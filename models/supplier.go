package models

// Supplier is master data used to fill dropdowns; it is read-only for this
// client and cached under the long Dropdown policy.
type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"active"`
}

// EntityID implements cache.Entity.
func (s Supplier) EntityID() string { return s.ID }

// Clone implements cache.Entity; Supplier has no nested collections.
func (s Supplier) Clone() Supplier { return s }

package dto

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// RegisterRequest is the advertiser-facing profile form.
type RegisterRequest struct {
	Name      string  `json:"name" form:"name"`
	Address1  string  `json:"address_1" form:"address_1"`
	Address2  *string `json:"address_2,omitempty" form:"address_2"`
	City      string  `json:"city" form:"city"`
	State     string  `json:"state" form:"state"`
	ZipCode   string  `json:"zip_code" form:"zip_code"`
	Contact   string  `json:"contact" form:"contact"`
	Position  string  `json:"position" form:"position"`
	Telephone string  `json:"telephone" form:"telephone"`
}

// AdvertiserRequest is the staff form with every field. On update an
// omitted approved or salesperson_id keeps the stored value; send
// "salesperson_id": "" to unassign.
type AdvertiserRequest struct {
	RegisterRequest
	Email         string  `json:"email"`
	Approved      *bool   `json:"approved,omitempty"`
	SalespersonID *string `json:"salesperson_id,omitempty"`
}

type ApprovalRequest struct {
	IDs []string `json:"ids"`
}

// AdvertRequest is the staff advert form.
type AdvertRequest struct {
	AdvertiserID string   `json:"advertiser_id"`
	Size         string   `json:"size"`
	Description  string   `json:"description"`
	ImageFile    string   `json:"image_file"`
	IssueIDs     []string `json:"issue_ids"`
	FinalPrice   *string  `json:"final_price,omitempty"`
	Paid         bool     `json:"paid"`
	Notes        *string  `json:"notes,omitempty"`
}

type IssueRequest struct {
	Title       string `json:"title"`
	Volume      int    `json:"volume"`
	IssueNumber int    `json:"issue_number"`
}

type CorrespondenceRequest struct {
	AdvertiserID string `json:"advertiser_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Text         string `json:"text"`
	Receptive    *int   `json:"receptive,omitempty"`
}

type ReceptiveRequest struct {
	Receptive *int `json:"receptive"`
}

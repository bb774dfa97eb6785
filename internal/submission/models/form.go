package models

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	idmodels "kycreview/internal/identity/models"
	dErrors "kycreview/pkg/domain-errors"
)

// FormData is the KYC form as posted by a customer or an agent.
type FormData struct {
	Salutation    string `json:"salutation,omitempty"`
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name,omitempty"`
	LastName      string `json:"last_name"`
	Gender        string `json:"gender,omitempty"`
	DOB           string `json:"dob"`
	Nationality   string `json:"nationality,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email,omitempty"`

	SpouseName      string `json:"spouse_name,omitempty"`
	FatherName      string `json:"father_name,omitempty"`
	MotherName      string `json:"mother_name,omitempty"`
	GrandfatherName string `json:"grandfather_name,omitempty"`

	CitizenshipNo        string `json:"citizenship_no,omitempty"`
	CitizenshipPlace     string `json:"citizenship_place,omitempty"`
	CitizenshipIssueDate string `json:"citizenship_issue_date,omitempty"`

	PermProvince     string `json:"perm_province,omitempty"`
	PermDistrict     string `json:"perm_district,omitempty"`
	PermMunicipality string `json:"perm_municipality,omitempty"`
	PermWard         int    `json:"perm_ward,omitempty"`
	PermAddress      string `json:"perm_address,omitempty"`
	TempProvince     string `json:"temp_province,omitempty"`
	TempDistrict     string `json:"temp_district,omitempty"`
	TempMunicipality string `json:"temp_municipality,omitempty"`
	TempWard         int    `json:"temp_ward,omitempty"`
	TempAddress      string `json:"temp_address,omitempty"`

	BankName      string `json:"bank_name,omitempty"`
	BankBranch    string `json:"bank_branch,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountType   string `json:"account_type,omitempty"`

	Occupation   string          `json:"occupation,omitempty"`
	IncomeSource string          `json:"income_source,omitempty"`
	AnnualIncome decimal.Decimal `json:"annual_income"`
	PAN          string          `json:"pan,omitempty"`

	NomineeName     string `json:"nominee_name,omitempty"`
	NomineeRelation string `json:"nominee_relation,omitempty"`
	NomineeDOB      string `json:"nominee_dob,omitempty"`
	NomineeContact  string `json:"nominee_contact,omitempty"`

	IsPEP       bool `json:"is_pep"`
	IsAMLListed bool `json:"is_aml_listed"`
}

// Field is one named form value in its audit representation.
type Field struct {
	Name  string
	Value string
}

// Fields lists every form value in a fixed order.
func (f FormData) Fields() []Field {
	return []Field{
		{"salutation", f.Salutation},
		{"first_name", f.FirstName},
		{"middle_name", f.MiddleName},
		{"last_name", f.LastName},
		{"gender", f.Gender},
		{"dob", f.DOB},
		{"nationality", f.Nationality},
		{"marital_status", f.MaritalStatus},
		{"mobile", f.Mobile},
		{"email", f.Email},
		{"spouse_name", f.SpouseName},
		{"father_name", f.FatherName},
		{"mother_name", f.MotherName},
		{"grandfather_name", f.GrandfatherName},
		{"citizenship_no", f.CitizenshipNo},
		{"citizenship_place", f.CitizenshipPlace},
		{"citizenship_issue_date", f.CitizenshipIssueDate},
		{"perm_province", f.PermProvince},
		{"perm_district", f.PermDistrict},
		{"perm_municipality", f.PermMunicipality},
		{"perm_ward", ward(f.PermWard)},
		{"perm_address", f.PermAddress},
		{"temp_province", f.TempProvince},
		{"temp_district", f.TempDistrict},
		{"temp_municipality", f.TempMunicipality},
		{"temp_ward", ward(f.TempWard)},
		{"temp_address", f.TempAddress},
		{"bank_name", f.BankName},
		{"bank_branch", f.BankBranch},
		{"account_number", f.AccountNumber},
		{"account_type", f.AccountType},
		{"occupation", f.Occupation},
		{"income_source", f.IncomeSource},
		{"annual_income", f.AnnualIncome.String()},
		{"pan", f.PAN},
		{"nominee_name", f.NomineeName},
		{"nominee_relation", f.NomineeRelation},
		{"nominee_dob", f.NomineeDOB},
		{"nominee_contact", f.NomineeContact},
		{"is_pep", strconv.FormatBool(f.IsPEP)},
		{"is_aml_listed", strconv.FormatBool(f.IsAMLListed)},
	}
}

func ward(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// FieldChange is one mutated value.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// DiffForms returns the fields whose audit representation differs.
func DiffForms(before, after FormData) []FieldChange {
	b, a := before.Fields(), after.Fields()
	var out []FieldChange
	for i := range a {
		if b[i].Value != a[i].Value {
			out = append(out, FieldChange{Field: a[i].Name, OldValue: b[i].Value, NewValue: a[i].Value})
		}
	}
	return out
}

// Normalize trims free text and upper-cases identifiers.
func (f *FormData) Normalize() {
	for _, p := range []*string{
		&f.Salutation, &f.FirstName, &f.MiddleName, &f.LastName, &f.Gender, &f.DOB,
		&f.Nationality, &f.MaritalStatus, &f.Mobile, &f.Email, &f.SpouseName,
		&f.FatherName, &f.MotherName, &f.GrandfatherName, &f.CitizenshipNo,
		&f.CitizenshipPlace, &f.CitizenshipIssueDate, &f.PermProvince, &f.PermDistrict,
		&f.PermMunicipality, &f.PermAddress, &f.TempProvince, &f.TempDistrict,
		&f.TempMunicipality, &f.TempAddress, &f.BankName, &f.BankBranch,
		&f.AccountNumber, &f.AccountType, &f.Occupation, &f.IncomeSource, &f.PAN,
		&f.NomineeName, &f.NomineeRelation, &f.NomineeDOB, &f.NomineeContact,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.PAN = strings.ToUpper(f.PAN)
	f.Email = strings.ToLower(f.Email)
}

const maxWard = 35

// Validate checks the fields a submission cannot be reviewed without.
func (f FormData) Validate() error {
	var missing []string
	for _, req := range []Field{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"dob", f.DOB},
		{"mobile", f.Mobile},
	} {
		if req.Value == "" {
			missing = append(missing, req.Name)
		}
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	for _, d := range []Field{{"dob", f.DOB}, {"citizenship_issue_date", f.CitizenshipIssueDate}, {"nominee_dob", f.NomineeDOB}} {
		if d.Value == "" {
			continue
		}
		if _, err := idmodels.ParseDOB(d.Value); err != nil {
			return dErrors.New(dErrors.CodeValidation, d.Name+" must be YYYY-MM-DD")
		}
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			return dErrors.New(dErrors.CodeValidation, "email is invalid")
		}
	}
	if f.AnnualIncome.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "annual_income must not be negative")
	}
	if f.PermWard < 0 || f.PermWard > maxWard || f.TempWard < 0 || f.TempWard > maxWard {
		return dErrors.New(dErrors.CodeValidation, "ward must be between 1 and 35")
	}
	return nil
}

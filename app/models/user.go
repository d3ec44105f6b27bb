package models

import "gorm.io/gorm"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	// SecurityQuestionCount is the number of recovery questions offered at
	// registration.
	SecurityQuestionCount = 7
)

// SecurityQuestions are shown in this order on the register and
// forgot-password forms; answers are stored positionally.
var SecurityQuestions = [SecurityQuestionCount]string{
	"What was the name of your first pet?",
	"In which city were you born?",
	"What is your mother's maiden name?",
	"What was the name of your first school?",
	"What is your favourite food?",
	"Who was your childhood best friend?",
	"What was the model of your first phone?",
}

// User is a registered customer.
type User struct {
	gorm.Model
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password     string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Phone        string `gorm:"size:20" json:"phone"`
	Address      string `gorm:"type:text" json:"address"`
	Pincode      string `gorm:"size:10" json:"pincode"`
	Role         string `gorm:"size:20;not null;default:customer" json:"role"`
	ProfileImage string `gorm:"size:500" json:"profile_image"`

	// Recovery answers, lowercased and trimmed. Empty means unanswered.
	Answer1 string `gorm:"size:100" json:"-"`
	Answer2 string `gorm:"size:100" json:"-"`
	Answer3 string `gorm:"size:100" json:"-"`
	Answer4 string `gorm:"size:100" json:"-"`
	Answer5 string `gorm:"size:100" json:"-"`
	Answer6 string `gorm:"size:100" json:"-"`
	Answer7 string `gorm:"size:100" json:"-"`
}

// Answers returns the stored recovery answers in question order.
func (u *User) Answers() [SecurityQuestionCount]string {
	return [SecurityQuestionCount]string{u.Answer1, u.Answer2, u.Answer3, u.Answer4, u.Answer5, u.Answer6, u.Answer7}
}

// SetAnswers stores already-normalised answers in question order.
func (u *User) SetAnswers(a [SecurityQuestionCount]string) {
	u.Answer1, u.Answer2, u.Answer3, u.Answer4, u.Answer5, u.Answer6, u.Answer7 = a[0], a[1], a[2], a[3], a[4], a[5], a[6]
}

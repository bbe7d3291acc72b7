package employer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployer_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Employer{}).Validate(), ErrCompanyNameRequired)
	assert.NoError(t, (&Employer{CompanyName: "Acme"}).Validate())
	assert.NoError(t, (&Employer{CompanyName: "Acme", Website: "https://acme.io"}).Validate())
	assert.ErrorIs(t, (&Employer{CompanyName: "Acme", Website: "acme.io"}).Validate(), ErrInvalidWebsite)
	assert.ErrorIs(t, (&Employer{CompanyName: "Acme", Website: "ftp://acme.io"}).Validate(), ErrInvalidWebsite)
}

func TestValidateLogo(t *testing.T) {
	assert.NoError(t, ValidateLogo("acme.PNG", 1024))
	assert.ErrorIs(t, ValidateLogo("acme.gif", 1024), ErrUnsupportedLogo)
	assert.ErrorIs(t, ValidateLogo("acme.webp", MaxLogoSize+1), ErrLogoTooLarge)
}

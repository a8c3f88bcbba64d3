package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/jrsteele09/go-car-rental/users"
)

// issueLocked creates a token pair for userID and marks both live
func (s *Server) issueLocked(userID int) (gin.H, error) {
	access, refresh, err := s.issuer.IssuePair(userID)
	if err != nil {
		return nil, err
	}
	for raw, live := range map[string]map[string]int{access: s.liveAccess, refresh: s.liveRefresh} {
		claims, err := token.Inspect(raw)
		if err != nil {
			return nil, err
		}
		live[claims.JTI] = userID
	}
	return gin.H{"access": access, "refresh": refresh}, nil
}

type registerBody struct {
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Password        string         `json:"password"`
	PasswordConfirm string         `json:"password_confirm"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Phone           string         `json:"phone"`
	Role            users.RoleType `json:"role"`
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	switch {
	case body.Username == "":
		fieldError(c, "username", "This field is required.")
		return
	case !strings.Contains(body.Email, "@"):
		fieldError(c, "email", "Enter a valid email address.")
		return
	case body.Password != body.PasswordConfirm:
		fieldError(c, "password", "Password fields didn't match.")
		return
	}
	if body.Role == "" {
		body.Role = users.RoleCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.profile.Username == body.Username {
			fieldError(c, "username", "A user with that username already exists.")
			return
		}
	}

	p := s.addUserLocked(users.Profile{
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Phone:     body.Phone,
		Role:      body.Role,
	}, body.Password)

	resp, err := s.issueLocked(p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	resp["user"] = p
	resp["message"] = "User registered successfully"
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Username == "" || body.Password == "" {
		fieldError(c, "non_field_errors", "Must include username and password.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.profile.Username != body.Username {
			continue
		}
		if !users.CheckPasswordHash(body.Password, acc.passwordHash) {
			break
		}
		resp, err := s.issueLocked(acc.profile.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		resp["user"] = acc.profile
		resp["message"] = "Login successful"
		c.JSON(http.StatusOK, resp)
		return
	}
	fieldError(c, "non_field_errors", "Invalid credentials")
}

func (s *Server) refresh(c *gin.Context) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Refresh == "" {
		fieldError(c, "refresh", "This field is required.")
		return
	}

	invalid := gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"}
	claims, err := s.issuer.Verify(body.Refresh, token.TypeRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, invalid)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.liveRefresh[claims.JTI]; !live {
		c.JSON(http.StatusUnauthorized, invalid)
		return
	}
	access, err := s.issuer.Issue(claims.UserID, token.TypeAccess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	ac, err := token.Inspect(access)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	s.liveAccess[ac.JTI] = claims.UserID
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.accounts[c.GetInt(ctxUserID)].profile)
}

func (s *Server) updateMe(c *gin.Context) {
	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	if body.Email != nil && !strings.Contains(*body.Email, "@") {
		fieldError(c, "email", "Enter a valid email address.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &s.accounts[c.GetInt(ctxUserID)].profile
	for dst, src := range map[*string]*string{
		&p.FirstName: body.FirstName,
		&p.LastName:  body.LastName,
		&p.Email:     body.Email,
		&p.Phone:     body.Phone,
	} {
		if src != nil {
			*dst = *src
		}
	}
	c.JSON(http.StatusOK, *p)
}

func (s *Server) changePassword(c *gin.Context) {
	var body struct {
		OldPassword        string `json:"old_password"`
		NewPassword        string `json:"new_password"`
		NewPasswordConfirm string `json:"new_password_confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[c.GetInt(ctxUserID)]
	if !users.CheckPasswordHash(body.OldPassword, acc.passwordHash) {
		fieldError(c, "old_password", "Old password is not correct")
		return
	}
	if body.NewPassword != body.NewPasswordConfirm {
		fieldError(c, "new_password", "Password fields didn't match.")
		return
	}
	hash, err := users.HashPassword(body.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	acc.passwordHash = hash
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

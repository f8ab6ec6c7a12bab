package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"staff_sync_backend/internal/access"
	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/repositories"
	"staff_sync_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid staff id, email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrStaffIDExhausted   = errors.New("could not allocate a unique staff id")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrCannotDeleteSelf   = errors.New("you cannot delete your own account")
	ErrAdminRequired      = errors.New("only an administrator can create admin accounts")
)

const (
	minNameLength     = 2
	minPasswordLength = 6
	staffIDAttempts   = 5
	adminStaffPrefix  = "ADMIN"
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	StaffID  string `json:"staff_id" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest DTO
type SignupRequest struct {
	Name        string  `json:"name" binding:"required,min=2"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	Role        string  `json:"role" binding:"required,oneof=admin staff"`
	Department  *string `json:"department" binding:"required_if=Role staff"`
	Position    *string `json:"position"`
	DOB         string  `json:"dob" binding:"required,datetime=2006-01-02"`
	Gender      string  `json:"gender" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdateCredentialsRequest DTO. Nil fields are left unchanged.
type UpdateCredentialsRequest struct {
	CurrentPassword string  `json:"current_password" binding:"required"`
	NewPassword     *string `json:"new_password" binding:"omitempty,min=6"`
	NewEmail        *string `json:"new_email" binding:"omitempty,email"`
	NewName         *string `json:"new_name" binding:"omitempty,min=2"`
}

// UpdateProfileRequest DTO. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Department  *string `json:"department"`
	Position    *string `json:"position"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phone_number"`
}

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User         `json:"user"`
	AccessToken string               `json:"access_token"`
	ExpiresAt   time.Time            `json:"expires_at"`
	CheckIn     models.CheckInStatus `json:"check_in"`
	LandingPage access.Page          `json:"landing_page"`
	Pages       []access.Page        `json:"pages"`
}

// --- AuthService Interface ---
type AuthService interface {
	// Signup registers a roster entry. actor is nil for anonymous callers, who may only create staff.
	Signup(ctx context.Context, actor *models.User, req SignupRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID int64) error
	ValidateSession(ctx context.Context, userID int64, tokenID string) (bool, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateCredentials(ctx context.Context, userID int64, req UpdateCredentialsRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, page, pageSize int, search *string) ([]models.User, int, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
	SeedAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	userRepo repositories.UserRepository
	db       repositories.SQLExecutor
	sessions SessionStore
	checkins CheckInStore
	policy   *access.Policy
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, db repositories.SQLExecutor, sessions SessionStore, checkins CheckInStore, policy *access.Policy, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo: userRepo,
		db:       db,
		sessions: sessions,
		checkins: checkins,
		policy:   policy,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateSignup(req *SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if len([]rune(req.Name)) < minNameLength {
		return validationError("name must be at least %d characters", minNameLength)
	}
	if !utils.IsValidEmail(req.Email) {
		return validationError("email is not a valid address")
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleStaff {
		return validationError("role must be %q or %q", models.RoleAdmin, models.RoleStaff)
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(req.DOB)); err != nil {
		return validationError("dob must be YYYY-MM-DD")
	}
	if utils.IsEmpty(req.Gender) {
		return validationError("gender is required")
	}
	if req.Role == models.RoleStaff && utils.IsEmpty(utils.DerefString(req.Department)) {
		return validationError("department is required for staff")
	}
	return nil
}

// staffIDPrefix is ADMIN for admins, otherwise the first three characters of the department.
func staffIDPrefix(role string, department *string) string {
	if role == models.RoleAdmin {
		return adminStaffPrefix
	}
	dept := []rune(strings.TrimSpace(utils.DerefString(department)))
	if len(dept) > 3 {
		dept = dept[:3]
	}
	return strings.ToUpper(string(dept))
}

// nextStaffID returns prefix + zero-padded (highest used number + 1).
// Numbers freed by deleted users are never handed out again.
func (s *authService) nextStaffID(ctx context.Context, prefix string) (string, error) {
	existing, err := s.userRepo.StaffIDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, id := range existing {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Signup handles the business logic for roster registration.
func (s *authService) Signup(ctx context.Context, actor *models.User, req SignupRequest) (*models.User, error) {
	if err := validateSignup(&req); err != nil {
		return nil, err
	}
	if req.Role == models.RoleAdmin && !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return s.register(ctx, req)
}

func (s *authService) register(ctx context.Context, req SignupRequest) (*models.User, error) {

	taken, err := s.userRepo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailExists
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	dob := strings.TrimSpace(req.DOB)
	user := models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         req.Role,
		DOB:          &dob,
		Gender:       utils.NewNullString(req.Gender),
		PhoneNumber:  utils.NewNullString(utils.DerefString(req.PhoneNumber)),
	}
	if req.Role == models.RoleStaff {
		user.Department = utils.NewNullString(utils.DerefString(req.Department))
		user.Position = utils.NewNullString(utils.DerefString(req.Position))
	}

	prefix := staffIDPrefix(req.Role, user.Department)
	var createdUserID int64
	for attempt := 1; ; attempt++ {
		user.StaffID, err = s.nextStaffID(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to generate staff id: %w", err)
		}
		createdUserID, err = s.userRepo.CreateUser(ctx, s.db, &user)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			switch repositories.DuplicateConstraint(err) {
			case repositories.ConstraintUserEmail:
				return nil, ErrEmailExists
			case repositories.ConstraintUserStaffID:
				if attempt < staffIDAttempts {
					utils.LogWarn("Staff id collision, retrying", map[string]interface{}{"staff_id": user.StaffID, "attempt": attempt})
					continue
				}
				return nil, ErrStaffIDExhausted
			}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	utils.LogInfo("User registered", map[string]interface{}{"user_id": createdUserID, "staff_id": user.StaffID, "role": user.Role})

	registeredUser, err := s.userRepo.FindUserByID(ctx, createdUserID)
	if err != nil {
		user.ID = createdUserID
		user.PasswordHash = ""
		return &user, fmt.Errorf("user registered but failed to retrieve full details: %w", err)
	}
	registeredUser.PasswordHash = ""
	return registeredUser, nil
}

// Login checks the credential triple and opens the user's only session.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindUserByStaffIDAndEmail(ctx, strings.TrimSpace(req.StaffID), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	accessToken, tokenID, err := utils.GenerateAccessToken(user.ID, user.StaffID, user.Role, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	if err := s.sessions.Open(ctx, user.ID, tokenID, s.tokenTTL); err != nil {
		return nil, err
	}

	status, err := s.checkins.Load(ctx, user.ID)
	if err != nil {
		// The session is open; a missing marker only means the clock reads as stopped.
		utils.LogWarn("Could not restore check-in status at login", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		status = models.CheckInStatus{}
	}

	utils.LogInfo("User logged in", map[string]interface{}{"user_id": user.ID, "staff_id": user.StaffID})

	user.PasswordHash = ""
	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		CheckIn:     status,
		LandingPage: s.policy.DefaultPage(user.Role),
		Pages:       s.policy.Pages(user.Role),
	}, nil
}

// Logout closes the session and forgets the live check-in marker.
// The day's attendance row stays as it is.
func (s *authService) Logout(ctx context.Context, userID int64) error {
	if err := s.sessions.Close(ctx, userID); err != nil {
		return err
	}
	if err := s.checkins.Clear(ctx, userID); err != nil {
		return err
	}
	utils.LogInfo("User logged out", map[string]interface{}{"user_id": userID})
	return nil
}

// ValidateSession reports whether tokenID is still the user's live session.
func (s *authService) ValidateSession(ctx context.Context, userID int64, tokenID string) (bool, error) {
	return s.sessions.IsActive(ctx, userID, tokenID)
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateCredentials changes email, name or password after re-checking the current password.
func (s *authService) UpdateCredentials(ctx context.Context, userID int64, req UpdateCredentialsRequest) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if req.NewName != nil {
		name := strings.TrimSpace(*req.NewName)
		if len([]rune(name)) < minNameLength {
			return nil, validationError("name must be at least %d characters", minNameLength)
		}
		user.Name = name
	}
	if req.NewEmail != nil {
		email := strings.TrimSpace(*req.NewEmail)
		if !utils.IsValidEmail(email) {
			return nil, validationError("email is not a valid address")
		}
		if email != user.Email {
			taken, err := s.userRepo.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if req.NewPassword != nil {
		if !utils.IsValidPasswordLength(*req.NewPassword, minPasswordLength) {
			return nil, validationError("password must be at least %d characters", minPasswordLength)
		}
		user.PasswordHash, err = hashPassword(*req.NewPassword)
		if err != nil {
			return nil, err
		}
	}

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	utils.LogInfo("Credentials updated", map[string]interface{}{"user_id": user.ID})
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile changes the descriptive fields. StaffID is never touched.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	fields := []struct {
		name   string
		value  *string
		target **string
	}{
		{"department", req.Department, &user.Department},
		{"position", req.Position, &user.Position},
		{"gender", req.Gender, &user.Gender},
		{"phone_number", req.PhoneNumber, &user.PhoneNumber},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if utils.IsEmpty(*f.value) {
			return nil, validationError("%s must not be empty", f.name)
		}
		*f.target = utils.NewNullString(*f.value)
	}

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) saveUser(ctx context.Context, user *models.User) error {
	err := s.userRepo.UpdateUser(ctx, s.db, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrDuplicateKey) && repositories.DuplicateConstraint(err) == repositories.ConstraintUserEmail:
		return ErrEmailExists
	default:
		return fmt.Errorf("failed to update user: %w", err)
	}
}

// ListUsers pages through the roster.
func (s *authService) ListUsers(ctx context.Context, page, pageSize int, search *string) ([]models.User, int, error) {
	users, total, err := s.userRepo.ListUsers(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// DeleteUser removes a roster entry and its live keys.
func (s *authService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.DeleteUser(ctx, s.db, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.sessions.Close(ctx, userID); err != nil {
		utils.LogError(err, "Failed to close session of deleted user")
	}
	if err := s.checkins.Clear(ctx, userID); err != nil {
		utils.LogError(err, "Failed to clear check-in status of deleted user")
	}
	utils.LogInfo("User deleted", map[string]interface{}{"user_id": userID, "deleted_by": actorID})
	return nil
}

// SeedAdmin creates the bootstrap administrator when the roster has none.
// Returns nil, nil when an admin already exists.
func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil, nil
	}
	req := SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
		DOB:      "1970-01-01",
		Gender:   "unspecified",
	}
	if err := validateSignup(&req); err != nil {
		return nil, err
	}
	return s.register(ctx, req)
}

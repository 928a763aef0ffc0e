package server

import (
	"creepycorners/internal/middleware"
	"creepycorners/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is the JSON body of PUT /api/user/profile. Empty fields are ignored.
type UpdateProfileRequest struct {
	Username       string `json:"username" form:"username"`
	DisplayName    string `json:"display_name" form:"display_name"`
	Bio            string `json:"bio" form:"bio"`
	ProfilePicture string `json:"profile_picture" form:"profile_picture"`
	CoverPhoto     string `json:"cover_photo" form:"cover_photo"`
}

// GetMyProfile handles GET /api/user/profile
// @Summary Own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /user/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/user/profile
// @Summary Update own profile
// @Description Partial update as JSON, or multipart with optional profilePicture/coverPhoto files
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest false "Profile fields"
// @Success 200 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /user/profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return mapServiceError(c, errInvalidBody)
	}

	in := service.UpdateProfileInput{
		UserID:         middleware.UserID(c),
		Username:       req.Username,
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		CoverPhoto:     req.CoverPhoto,
	}

	if isMultipart(c) {
		picture, closePicture, err := formUpload(c, "profilePicture")
		if err != nil {
			return mapServiceError(c, err)
		}
		defer closePicture()
		cover, closeCover, err := formUpload(c, "coverPhoto")
		if err != nil {
			return mapServiceError(c, err)
		}
		defer closeCover()
		in.ProfilePictureFile = picture
		in.CoverPhotoFile = cover
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetUserProfile handles GET /api/users/:userId
// @Summary Public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetPublicProfile(c.UserContext(), userID, middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// ToggleFollow handles POST /api/users/:userId/follow
// @Summary Follow or unfollow
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} models.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	res, err := s.followService.ToggleFollow(c.UserContext(), middleware.UserID(c), targetID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

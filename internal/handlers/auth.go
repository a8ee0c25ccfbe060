package handlers

import (
	"errors"

	"carrent/internal/config"
	"carrent/internal/models"
	"carrent/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SignupInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a new user with a bcrypt-hashed password.
func Signup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invalid input", "issues": validationIssues(err)})
			return
		}

		var existing models.User
		err := db.Where("username = ?", input.Username).First(&existing).Error
		if err == nil {
			c.JSON(409, gin.H{"error": "Username already exists"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		user := models.User{
			Username: input.Username,
			Password: input.Password,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		// The unique index still backstops the read-then-insert
		// window; a lost race surfaces here as a create error.
		if err := db.Create(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(201, gin.H{
			"message": "User created successfully",
			"userId":  user.ID,
		})
	}
}

// Login verifies credentials and issues a signed token. Unknown
// username and wrong password produce the identical response so the
// endpoint can't be used to enumerate accounts.
func Login(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invalid input", "issues": validationIssues(err)})
			return
		}

		var user models.User
		if err := db.Where("username = ?", input.Username).First(&user).Error; err != nil {
			c.JSON(401, gin.H{"error": "Invalid username or password"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid username or password"})
			return
		}

		token, err := utils.GenerateToken(&user, cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Login successful",
			"token":   token,
		})
	}
}

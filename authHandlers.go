package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok && verrs != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "VALIDATION", "message": utils.ProcessValidationErrors(err)}})
				return
			}
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}

		user, err := models.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHENTICATED", "invalid credentials"))
			return
		}
		if user.IsActive == nil || !*user.IsActive {
			c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHENTICATED", "account disabled"))
			return
		}
		if err := utils.ComparePassword(user.Password, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHENTICATED", "invalid credentials"))
			return
		}

		token, err := utils.JwtGenerate(user.ID, string(user.Role), user.CrouId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"name":     user.Name,
				"role":     user.Role,
				"crou_id":  user.CrouId,
			},
		})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		user, err := models.GetUserById(c.Request.Context(), tc.UserId)
		if err != nil {
			respondError(c, err)
			return
		}
		accessible := make([]string, 0, len(tc.AccessibleTenantIds))
		for id := range tc.AccessibleTenantIds {
			accessible = append(accessible, id)
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"name":     user.Name,
				"role":     user.Role,
				"crou_id":  user.CrouId,
			},
			"context": gin.H{
				"tenant_id":             tc.TenantId,
				"tenant_type":           tc.TenantType,
				"access_scope":          tc.AccessScope,
				"accessible_tenant_ids": accessible,
				"user_id":               tc.UserId,
				"user_role":             tc.UserRole,
			},
		})
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireMinistere(c)
		if tc == nil {
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
	}
}

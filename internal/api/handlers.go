package api

import (
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/apperr"
	"gitlab.com/dirk.krummacker/contactbook/internal/validation"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
	"go.uber.org/zap"
)

// listContacts responds with the list of all contacts.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contacts
func (h *handler) listContacts(c *gin.Context) {
	contacts, err := h.svc.ListContacts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, contacts)
}

// getContact responds with the contact whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contact/0b6e4a8f-4bd8-4b8e-9c70-2a0d8c1b3c8e
func (h *handler) getContact(c *gin.Context) {
	contact, err := h.svc.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, contact)
}

// createContact inserts the contact specified in the request's JSON. It responds with the full
// contact including the newly assigned id.
//
// All fields except profileImageId are required. The phone number and the address are nested
// objects which must be complete.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contact --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "John", "lastName": "Doe", "email": "john.doe@example.com", "phoneNumber": {"countryCode": "+1", "number": "5551234"}, "address": {"street": "1 Main St", "state": "CA", "country": "US", "zipCode": "90001", "geocode": {"longitude": -118.24, "latitude": 34.05}}}'
func (h *handler) createContact(c *gin.Context) {
	var request model.CreateContactRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.fail(c, validation.DecodeError(err))
		return
	}
	if err := validation.ValidateCreate(&request); err != nil {
		h.fail(c, err)
		return
	}
	contact, err := h.svc.CreateContact(c.Request.Context(), request)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusCreated, contact)
}

// updateContact updates the contact whose id matches the id parameter of the request URL with the
// values specified in the JSON (and only those), and responds with the new version of the contact.
// A phone number or an address replaces the stored one and therefore must be complete.
//
// Example REST API calls:
//
//	> curl http://localhost:8000/api/contact/0b6e4a8f-4bd8-4b8e-9c70-2a0d8c1b3c8e --request "PUT" --include --header "Content-Type: application/json" --data '{"firstName": "Jane"}'
//	> curl http://localhost:8000/api/contact/0b6e4a8f-4bd8-4b8e-9c70-2a0d8c1b3c8e --request "PUT" --include --header "Content-Type: application/json" --data '{"phoneNumber": {"countryCode": "+49", "number": "08154711"}}'
func (h *handler) updateContact(c *gin.Context) {
	id := c.Param("id")
	var patch model.ContactPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, validation.DecodeError(err))
		return
	}
	if err := validation.ValidateUpdate(id, &patch); err != nil {
		h.fail(c, err)
		return
	}
	contact, err := h.svc.UpdateContact(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, contact)
}

// deleteContact deletes the contact whose id matches the id parameter of the request URL and
// responds with the deleted contact. The profile image stays available.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contact/0b6e4a8f-4bd8-4b8e-9c70-2a0d8c1b3c8e --request "DELETE"
func (h *handler) deleteContact(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateDelete(id); err != nil {
		h.fail(c, err)
		return
	}
	contact, err := h.svc.DeleteContact(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, contact)
}

// uploadImage stores the image of the multipart field 'profileImage' and responds with its id,
// which can then be used as profileImageId of a contact.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contact/image --request "POST" --form "profileImage=@portrait.png"
func (h *handler) uploadImage(c *gin.Context) {
	data, err := h.readImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := validation.ValidateImage(data, h.maxImageBytes); err != nil {
		h.fail(c, err)
		return
	}
	id, err := h.svc.UploadImage(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusCreated, id)
}

// getImage responds with the raw bytes of a profile image.
//
// Example REST API call:
//
//	> curl http://localhost:8000/api/contact/image/7d1f0b52-31a4-4d8e-b8ad-6f0a2c9e5b11 --output portrait.png
func (h *handler) getImage(c *gin.Context) {
	image, err := h.svc.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(image.Data).String(), image.Data)
}

// readImage reads at most one byte more than allowed so that oversized uploads are recognized
// without reading them completely.
func (h *handler) readImage(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile(validation.ImageField)
	if err != nil {
		return nil, apperr.Validation("%q is required", validation.ImageField)
	}
	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "could not open uploaded image")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "could not read uploaded image")
	}
	return data, nil
}

// succeed writes the success envelope.
func succeed(c *gin.Context, status int, data any) {
	c.IndentedJSON(status, model.Response{Success: true, Data: data})
}

// fail writes the error envelope. Internal causes are logged but never sent to the client.
func (h *handler) fail(c *gin.Context, err error) {
	status, message := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.log.Info("request rejected", zap.String("path", c.Request.URL.Path), zap.String("reason", message))
	}
	c.AbortWithStatusJSON(status, model.Response{Success: false, Message: message})
}

/**
 * @description
 * This file contains the image upload helpers: collision-resistant file
 * naming derived from the owner and upload time, and the allow-list of image
 * extensions accepted for account images.
 */

package app

import (
	"crypto/md5"
	"encoding/hex"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// deriveImageFileName builds the stored file name for an account image:
// "<ownerID>+<md5(unix timestamp)><ext>", preserving the original extension.
func deriveImageFileName(ownerID uuid.UUID, now time.Time, originalName string) string {
	sum := md5.Sum([]byte(strconv.FormatInt(now.Unix(), 10)))
	ext := strings.ToLower(path.Ext(originalName))
	return ownerID.String() + "+" + hex.EncodeToString(sum[:]) + ext
}

// validImageExtension reports whether the original file name carries an
// accepted image extension.
func validImageExtension(originalName string) bool {
	return allowedImageExtensions[strings.ToLower(path.Ext(originalName))]
}

package protocol

// CRC8 calculates the checksum shared by every packet type on the link.
// Polynomial 0x07, initial value 0x00, MSB first, no reflection.
// Encoders hash every byte of the packet except the trailing CRC slot;
// decoders recompute over the same range and compare.
func CRC8(data []byte) uint8 {
	crc := uint8(0x00)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

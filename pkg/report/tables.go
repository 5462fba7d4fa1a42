package report

// modifierNames maps modifier bit positions of report byte 0 to labels, in
// ascending bit order: 0x01 .. 0x80.
var modifierNames = [8]string{
	"Left Ctrl", "Left Shift", "Left Alt", "Left GUI",
	"Right Ctrl", "Right Shift", "Right Alt", "Right GUI",
}

// keyNames maps HID key codes to labels. Built once at init, read-only after.
var keyNames = map[byte]string{
	0x04: "A", 0x05: "B", 0x06: "C", 0x07: "D", 0x08: "E", 0x09: "F",
	0x0A: "G", 0x0B: "H", 0x0C: "I", 0x0D: "J", 0x0E: "K", 0x0F: "L",
	0x10: "M", 0x11: "N", 0x12: "O", 0x13: "P", 0x14: "Q", 0x15: "R",
	0x16: "S", 0x17: "T", 0x18: "U", 0x19: "V", 0x20: "W", 0x21: "X",
	0x22: "Y", 0x23: "Z", 0x24: "1", 0x25: "2", 0x26: "3", 0x27: "4",
	0x28: "5", 0x29: "6", 0x2A: "7", 0x2B: "8", 0x2C: "9", 0x2D: "0",
	0x2E: "Enter", 0x2F: "Esc", 0x30: "Backspace", 0x31: "Tab",
	0x32: "Space", 0x33: "-", 0x34: "=", 0x35: "[", 0x36: "]",
	0x37: `\`, 0x38: ";", 0x39: "'", 0x3A: "`", 0x3B: ",", 0x3C: ".",
	0x3D: "/", 0x3E: "Caps Lock", 0x3F: "F1", 0x40: "F2", 0x41: "F3",
	0x42: "F4", 0x43: "F5", 0x44: "F6", 0x45: "F7", 0x46: "F8",
	0x47: "F9", 0x48: "F10", 0x49: "F11", 0x4A: "F12", 0x4B: "Print Screen",
	0x4C: "Scroll Lock", 0x4D: "Pause", 0x4E: "Insert", 0x4F: "Home",
	0x50: "Page Up", 0x51: "Delete", 0x52: "End", 0x53: "Page Down",
	0x54: "Right Arrow", 0x55: "Left Arrow", 0x56: "Down Arrow", 0x57: "Up Arrow",
	0x58: "Num Lock", 0x59: "Keypad /", 0x5A: "Keypad *", 0x5B: "Keypad -",
	0x5C: "Keypad +", 0x5D: "Keypad Enter", 0x5E: "Keypad 1", 0x5F: "Keypad 2",
	0x60: "Keypad 3", 0x61: "Keypad 4", 0x62: "Keypad 5", 0x63: "Keypad 6",
	0x64: "Keypad 7", 0x65: "Keypad 8", 0x66: "Keypad 9", 0x67: "Keypad 0",
	0x68: "Keypad .", 0x69: `\`, 0x6A: "Application", 0x6B: "Power",
	0x6C: "Keypad =", 0x6D: "F13", 0x6E: "F14", 0x6F: "F15", 0x70: "F16",
	0x71: "F17", 0x72: "F18", 0x73: "F19", 0x74: "F20", 0x75: "F21",
	0x76: "F22", 0x77: "F23", 0x78: "F24",
}

package automation

import (
	"encoding/json"
	"fmt"
)

// Visibility in both detection scripts uses offsetParent as the proxy, so
// elements hidden via visibility:hidden or positioned off-screen may still
// be reported. This is a best-effort heuristic, not a guarantee.

const detectFormsScript = `() => {
	const fields = [];
	document.querySelectorAll('input, textarea, select').forEach((el) => {
		if (el.type === 'hidden') return;
		if (!el.offsetParent) return;
		let label = '';
		if (el.id) {
			const forLabel = document.querySelector('label[for="' + el.id + '"]');
			if (forLabel) label = forLabel.textContent.trim();
		}
		if (!label) {
			const wrapping = el.closest('label');
			if (wrapping) label = wrapping.textContent.trim();
		}
		fields.push({
			id: el.id || el.name || '',
			type: el.type || el.tagName.toLowerCase(),
			label: label,
			name: el.name || '',
			value: el.value || '',
			placeholder: el.placeholder || '',
			required: !!el.required,
		});
	});
	return fields;
}`

const detectElementsScript = `() => {
	const elements = [];
	const candidates = document.querySelectorAll(
		'a, button, input[type="button"], input[type="submit"], [onclick], [role="button"]');
	candidates.forEach((el, i) => {
		if (!el.offsetParent) return;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) return;
		elements.push({
			index: i,
			tag: el.tagName.toLowerCase(),
			text: (el.innerText || el.value || '').trim().slice(0, 80),
			x: Math.round(rect.left + rect.width / 2),
			y: Math.round(rect.top + rect.height / 2),
			width: Math.round(rect.width),
			height: Math.round(rect.height),
		});
	});
	return elements;
}`

// fillFormScript locates an element by id first, then by name, sets its
// value, and synthesizes input+change events so page-level listeners
// observe the change. Returns false when no matching element exists.
const fillFormScript = `(args) => {
	let el = document.getElementById(args.fieldId);
	if (!el) {
		const byName = document.getElementsByName(args.fieldId);
		if (byName.length > 0) el = byName[0];
	}
	if (!el) return false;
	el.value = args.value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// decodeEvaluated converts a page-evaluation result (generic decoded JSON)
// into a typed value by round-tripping through JSON.
func decodeEvaluated(value interface{}, out interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode page result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode page result: %w", err)
	}
	return nil
}
